package models

import (
	"time"

	"github.com/goldledger/backend/internal/domain/ledger"
	"github.com/goldledger/backend/internal/domain/ledger/acl"
	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoldPriceModel is the persistence model for the GoldPrice aggregate root.
// Records are append-only: superseded and deactivated rows are kept so past
// settlements stay auditable.
type GoldPriceModel struct {
	TenantAggregateModel
	PricePerGram decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Purity       decimal.Decimal    `gorm:"type:decimal(6,3);not null"`
	EffectiveAt  time.Time          `gorm:"not null;index:idx_gold_prices_effective,priority:2"`
	Source       ledger.PriceSource `gorm:"type:varchar(20);not null"`
	Market       string             `gorm:"type:varchar(100)"`
	BuyPrice     *decimal.Decimal   `gorm:"type:decimal(18,2)"`
	SellPrice    *decimal.Decimal   `gorm:"type:decimal(18,2)"`
	Notes        string             `gorm:"type:text"`
	IsCurrent    bool               `gorm:"not null;default:false;index"`
	IsActive     bool               `gorm:"not null;default:true;index:idx_gold_prices_effective,priority:3"`
}

// TableName returns the table name for GORM
func (GoldPriceModel) TableName() string {
	return "gold_prices"
}

// ToDomain converts the persistence model to a domain GoldPrice entity.
func (m *GoldPriceModel) ToDomain() *ledger.GoldPrice {
	return &ledger.GoldPrice{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		PricePerGram:        m.PricePerGram,
		Purity:              m.Purity,
		EffectiveAt:         m.EffectiveAt,
		Source:              m.Source,
		Market:              m.Market,
		BuyPrice:            m.BuyPrice,
		SellPrice:           m.SellPrice,
		Notes:               m.Notes,
		IsCurrent:           m.IsCurrent,
		IsActive:            m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain GoldPrice entity.
func (m *GoldPriceModel) FromDomain(p *ledger.GoldPrice) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.PricePerGram = p.PricePerGram
	m.Purity = p.Purity
	m.EffectiveAt = p.EffectiveAt
	m.Source = p.Source
	m.Market = p.Market
	m.BuyPrice = p.BuyPrice
	m.SellPrice = p.SellPrice
	m.Notes = p.Notes
	m.IsCurrent = p.IsCurrent
	m.IsActive = p.IsActive
}

// GoldPriceModelFromDomain creates a new persistence model from a domain GoldPrice.
func GoldPriceModelFromDomain(p *ledger.GoldPrice) *GoldPriceModel {
	m := &GoldPriceModel{}
	m.FromDomain(p)
	return m
}

// InstallmentModel is the persistence model for the Installment aggregate
// root. The unique index across tenant, invoice and sequence is the
// authoritative guard against duplicate plans.
type InstallmentModel struct {
	AggregateModel
	TenantID           uuid.UUID                `gorm:"type:uuid;not null;index;uniqueIndex:idx_installments_invoice_seq,priority:1"`
	InvoiceID          uuid.UUID                `gorm:"type:uuid;not null;index;uniqueIndex:idx_installments_invoice_seq,priority:2"`
	Sequence           int                      `gorm:"not null;uniqueIndex:idx_installments_invoice_seq,priority:3"`
	Type               ledger.InstallmentType   `gorm:"type:varchar(20);not null;default:'GOLD'"`
	WeightDue          decimal.Decimal          `gorm:"type:decimal(12,3);not null"`
	WeightPaid         decimal.Decimal          `gorm:"type:decimal(12,3);not null"`
	AmountPaid         decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	PriceAtLastPayment *decimal.Decimal         `gorm:"type:decimal(18,2)"`
	DueDate            time.Time                `gorm:"not null;index"`
	Status             ledger.InstallmentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentMethod      string                   `gorm:"type:varchar(50)"`
	PaymentReference   string                   `gorm:"type:varchar(100)"`
	PaymentNotes       string                   `gorm:"type:text"`
	PaidAt             *time.Time
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain Installment entity.
func (m *InstallmentModel) ToDomain() *ledger.Installment {
	return &ledger.Installment{
		TenantAggregateRoot: m.toTenantAggregateRoot(),
		InvoiceID:           m.InvoiceID,
		Sequence:            m.Sequence,
		Type:                m.Type,
		WeightDue:           m.WeightDue,
		WeightPaid:          m.WeightPaid,
		AmountPaid:          m.AmountPaid,
		PriceAtLastPayment:  m.PriceAtLastPayment,
		DueDate:             m.DueDate,
		Status:              m.Status,
		PaymentMethod:       m.PaymentMethod,
		PaymentReference:    m.PaymentReference,
		PaymentNotes:        m.PaymentNotes,
		PaidAt:              m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Installment entity.
func (m *InstallmentModel) FromDomain(i *ledger.Installment) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.Version = i.Version
	m.TenantID = i.TenantID
	m.InvoiceID = i.InvoiceID
	m.Sequence = i.Sequence
	m.Type = i.Type
	m.WeightDue = i.WeightDue
	m.WeightPaid = i.WeightPaid
	m.AmountPaid = i.AmountPaid
	m.PriceAtLastPayment = i.PriceAtLastPayment
	m.DueDate = i.DueDate
	m.Status = i.Status
	m.PaymentMethod = i.PaymentMethod
	m.PaymentReference = i.PaymentReference
	m.PaymentNotes = i.PaymentNotes
	m.PaidAt = i.PaidAt
}

// InstallmentModelFromDomain creates a new persistence model from a domain Installment.
func InstallmentModelFromDomain(i *ledger.Installment) *InstallmentModel {
	m := &InstallmentModel{}
	m.FromDomain(i)
	return m
}

func (m *InstallmentModel) toTenantAggregateRoot() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.ToDomainBaseEntity(),
			Version:    m.Version,
		},
		TenantID: m.TenantID,
	}
}

// InvoiceModel is the persistence model for the invoice obligation snapshot
// consumed by the ledger through its anti-corruption layer.
type InvoiceModel struct {
	TenantAggregateModel
	Number          string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_tenant_number,priority:2"`
	Kind            acl.InvoiceKind `gorm:"type:varchar(20);not null;default:'GOLD'"`
	TotalWeightDue  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	RemainingWeight decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	HasInstallments bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToRef converts the persistence model to the ledger's invoice snapshot.
func (m *InvoiceModel) ToRef() acl.InvoiceRef {
	return acl.InvoiceRef{
		ID:              acl.MustNewInvoiceID(m.ID),
		Number:          m.Number,
		Kind:            m.Kind,
		TotalWeightDue:  m.TotalWeightDue,
		RemainingWeight: m.RemainingWeight,
		HasInstallments: m.HasInstallments,
	}
}
