package model

// CategoryInvestasi is the shared income category every workflow-driven
// investment transaction is tagged with.
const CategoryInvestasi = "Investasi"

type Category struct {
	BaseModel
	Name  string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required"`
	Icon  string          `gorm:"type:varchar(20)" json:"icon"`
	Color string          `gorm:"type:varchar(20)" json:"color"`
	Type  TransactionType `gorm:"type:varchar(10);not null" json:"type" validate:"required,oneof=income expense"`
}

// DefaultCategories di-seed sekali pas awal setup
var DefaultCategories = []Category{
	// Kategori pengeluaran
	{Name: "Pakan", Icon: "🌾", Color: "#F59E0B", Type: TxExpense},
	{Name: "Obat & Vaksin", Icon: "💊", Color: "#EF4444", Type: TxExpense},
	{Name: "Gas Elpiji", Icon: "🔥", Color: "#F97316", Type: TxExpense},
	{Name: "Gaji Karyawan", Icon: "👷", Color: "#8B5CF6", Type: TxExpense},
	{Name: "Listrik", Icon: "⚡", Color: "#3B82F6", Type: TxExpense},
	{Name: "Transportasi", Icon: "🚗", Color: "#6366F1", Type: TxExpense},
	{Name: "Peralatan", Icon: "🔧", Color: "#64748B", Type: TxExpense},
	{Name: "Admin Bank", Icon: "🏦", Color: "#78716C", Type: TxExpense},
	{Name: "Pullet/DOC", Icon: "🐣", Color: "#FBBF24", Type: TxExpense},
	{Name: "Pembangunan", Icon: "🏗️", Color: "#0EA5E9", Type: TxExpense},
	{Name: "Lain-lain", Icon: "📦", Color: "#94A3B8", Type: TxExpense},
	// Kategori pemasukan
	{Name: CategoryInvestasi, Icon: "💰", Color: "#22C55E", Type: TxIncome},
	{Name: "Penjualan Telur", Icon: "🥚", Color: "#10B981", Type: TxIncome},
	{Name: "Penjualan Ayam", Icon: "🐔", Color: "#059669", Type: TxIncome},
	{Name: "Bunga Bank", Icon: "📈", Color: "#14B8A6", Type: TxIncome},
	{Name: "Lainnya", Icon: "💵", Color: "#34D399", Type: TxIncome},
}
