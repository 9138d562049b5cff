package ledger

// Source column headers of the raw export.
const (
	ColCreatedAt     = "Data de Criação"
	ColPaidAt        = "Data de Pagamento"
	ColOrderID       = "ID do Pedido Yampi"
	ColProduct       = "Produto"
	ColQuantity      = "Quantidade"
	ColCustomer      = "Cliente"
	ColEmail         = "Email"
	ColTotal         = "Valor Total"
	ColStatus        = "Status"
	ColPaymentMethod = "Método de Pagamento"
)

var requiredColumns = []string{ColOrderID, ColProduct, ColQuantity}

// ProcessedHeaders is the destination header row; the order id sits in column 3.
var ProcessedHeaders = []string{
	ColCreatedAt,
	ColPaidAt,
	ColOrderID,
	"Gestor",
	"Tipo de Venda",
	"Upsell",
	"Order Bump",
	ColCustomer,
	ColEmail,
	ColProduct,
	"Nome do Produto",
	ColQuantity,
	ColTotal,
	ColStatus,
	ColPaymentMethod,
}
