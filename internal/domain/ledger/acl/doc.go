// Package acl provides Anti-Corruption Layer (ACL) components for the ledger
// bounded context. The gold installment ledger does not own invoices; it only
// reads a few obligation fields from the invoicing context (total weight owed,
// gold-denominated flag) and writes back the cached remaining weight. The ACL
// keeps the ledger domain isolated from the invoicing context's internal
// representation.
package acl
