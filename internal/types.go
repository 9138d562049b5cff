package internal

type SaleType string

const (
	SaleCallcenter   SaleType = "Callcenter"
	SaleRecuperation SaleType = "Recuperação"
	SaleUpsell       SaleType = "Upsell"
	SaleNormal       SaleType = "Normal"
)

// UnknownManager is written when no manager code can be found in the description.
const UnknownManager = "Desconhecido"

const (
	LabelYes = "Sim"
	LabelNo  = "Não"
)

// RawOrder is one row of the raw export. RowNo is the 1-based sheet row (header is row 1).
type RawOrder struct {
	RowNo         int
	CreatedAt     string
	PaidAt        string
	OrderID       string
	Product       string
	Quantity      string
	Customer      string
	Email         string
	Total         string
	Status        string
	PaymentMethod string
}

type Attributes struct {
	Manager   string
	SaleType  SaleType
	Quantity  int
	OrderBump bool
}

type ProcessedOrder struct {
	RawOrder
	Manager     string
	SaleType    SaleType
	Upsell      bool
	OrderBump   bool
	ProductName string
	ResolvedQty int
}

// LedgerRow renders the order in destination column order.
func (p ProcessedOrder) LedgerRow() []any {
	return []any{
		p.CreatedAt,
		p.PaidAt,
		p.OrderID,
		p.Manager,
		string(p.SaleType),
		YesNo(p.Upsell),
		YesNo(p.OrderBump),
		p.Customer,
		p.Email,
		p.Product,
		p.ProductName,
		p.ResolvedQty,
		p.Total,
		p.Status,
		p.PaymentMethod,
	}
}

type SkippedOrder struct {
	RowNo   int
	OrderID string
	Reason  string
}

func YesNo(v bool) string {
	if v {
		return LabelYes
	}
	return LabelNo
}
