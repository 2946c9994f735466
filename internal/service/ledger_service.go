package service

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/notbx57/peternakantelur/internal/apperror"
	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trailing window buat prediksi tren bulanan
const trendWindow = 90 * 24 * time.Hour

// DashboardView is the per-kandang financial overview.
type DashboardView struct {
	TotalIncome        float64             `json:"total_income"`
	TotalExpense       float64             `json:"total_expense"`
	Balance            float64             `json:"balance"`
	TransactionCount   int                 `json:"transaction_count"`
	ExpenseByCategory  map[string]float64  `json:"expense_by_category"`
	RecentTransactions []model.Transaction `json:"recent_transactions"`
}

// KandangStatsView carries the derived ROI figures.
type KandangStatsView struct {
	KandangID           uuid.UUID `json:"kandang_id"`
	TotalIncome         float64   `json:"total_income"`
	TotalExpense        float64   `json:"total_expense"`
	Profit              float64   `json:"profit"`
	TotalInvestment     float64   `json:"total_investment"`
	InvestorCount       int       `json:"investor_count"`
	ROI                 float64   `json:"roi"`
	AvgMonthlyProfit    float64   `json:"avg_monthly_profit"`
	PredictedMonthlyROI float64   `json:"predicted_monthly_roi"`
	MonthsToBreakEven   *int      `json:"months_to_break_even"` // nil = no positive trend to extrapolate
	TransactionCount    int       `json:"transaction_count"`
}

// KandangFinancials is the slim version embedded in listings.
type KandangFinancials struct {
	ROI             float64 `json:"roi"`
	Profit          float64 `json:"profit"`
	TotalInvestment float64 `json:"total_investment"`
}

// LedgerService derives all aggregate financial state of a kandang as a pure
// function of its full transaction + investor sets. Nothing incremental is
// persisted: every read recomputes from source rows.
type LedgerService interface {
	GetDashboard(kandangID uuid.UUID) (*DashboardView, error)
	GetKandangStats(kandangID uuid.UUID) (*KandangStatsView, error)
	Financials(kandangID uuid.UUID) (*KandangFinancials, error)
}

type ledgerService struct {
	kandangRepo repository.KandangRepository
	txRepo      repository.TransactionRepository
}

func NewLedgerService(kandangRepo repository.KandangRepository, txRepo repository.TransactionRepository) LedgerService {
	return &ledgerService{kandangRepo: kandangRepo, txRepo: txRepo}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (s *ledgerService) GetDashboard(kandangID uuid.UUID) (*DashboardView, error) {
	if _, err := s.kandangRepo.FindByID(kandangID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("kandang not found")
		}
		return nil, err
	}

	transactions, err := s.txRepo.FindByKandang(kandangID)
	if err != nil {
		return nil, err
	}

	var totalIncome, totalExpense float64
	expenseByCategory := map[string]float64{}

	for _, t := range transactions {
		if t.Type == model.TxIncome {
			totalIncome += t.Amount
			continue
		}
		totalExpense += t.Amount
		// Prefer the live category name; the denormalized field is only a
		// display cache and goes stale on rename.
		name := t.CategoryName
		if t.Category != nil {
			name = t.Category.Name
		}
		expenseByCategory[name] += t.Amount
	}

	// 5 transaksi terakhir by effective date
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Date.After(transactions[j].Date)
	})
	recent := transactions
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return &DashboardView{
		TotalIncome:        totalIncome,
		TotalExpense:       totalExpense,
		Balance:            totalIncome - totalExpense,
		TransactionCount:   len(transactions),
		ExpenseByCategory:  expenseByCategory,
		RecentTransactions: recent,
	}, nil
}

func (s *ledgerService) GetKandangStats(kandangID uuid.UUID) (*KandangStatsView, error) {
	if _, err := s.kandangRepo.FindByID(kandangID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("kandang not found")
		}
		return nil, err
	}

	transactions, err := s.txRepo.FindByKandang(kandangID)
	if err != nil {
		return nil, err
	}
	investors, err := s.kandangRepo.FindInvestorsByKandang(kandangID)
	if err != nil {
		return nil, err
	}

	// Profit dihitung dari SEMUA transaksi, bukan cuma window
	var totalIncome, totalExpense float64
	for _, t := range transactions {
		if t.Type == model.TxIncome {
			totalIncome += t.Amount
		} else {
			totalExpense += t.Amount
		}
	}
	profit := totalIncome - totalExpense

	var totalInvestment float64
	for _, inv := range investors {
		totalInvestment += inv.InvestmentAmount
	}

	roi := 0.0
	if totalInvestment > 0 {
		roi = profit / totalInvestment * 100
	}

	// Tren bulanan: trailing 90 hari, grouped per calendar month of the
	// EFFECTIVE date. Months without transactions are simply absent, so they
	// never drag the average toward zero.
	cutoff := time.Now().Add(-trendWindow)
	monthlyProfits := map[string]float64{}
	for _, t := range transactions {
		if t.Date.Before(cutoff) {
			continue
		}
		monthKey := t.Date.UTC().Format("2006-01")
		if t.Type == model.TxIncome {
			monthlyProfits[monthKey] += t.Amount
		} else {
			monthlyProfits[monthKey] -= t.Amount
		}
	}

	avgMonthlyProfit := 0.0
	if len(monthlyProfits) > 0 {
		var sum float64
		for _, v := range monthlyProfits {
			sum += v
		}
		avgMonthlyProfit = sum / float64(len(monthlyProfits))
	}

	predictedMonthlyROI := 0.0
	if totalInvestment > 0 {
		predictedMonthlyROI = avgMonthlyProfit / totalInvestment * 100
	}

	// nil bukan 0: nol bulan artinya "balik modal sekarang", nil artinya
	// ga ada tren positif buat diekstrapolasi
	var monthsToBreakEven *int
	if avgMonthlyProfit > 0 {
		months := int(math.Ceil(totalInvestment / avgMonthlyProfit))
		monthsToBreakEven = &months
	}

	return &KandangStatsView{
		KandangID:           kandangID,
		TotalIncome:         totalIncome,
		TotalExpense:        totalExpense,
		Profit:              profit,
		TotalInvestment:     totalInvestment,
		InvestorCount:       len(investors),
		ROI:                 round1(roi),
		AvgMonthlyProfit:    math.Round(avgMonthlyProfit),
		PredictedMonthlyROI: round1(predictedMonthlyROI),
		MonthsToBreakEven:   monthsToBreakEven,
		TransactionCount:    len(transactions),
	}, nil
}

// Financials computes the slim ROI/profit/investment triple used by kandang
// and market listings.
func (s *ledgerService) Financials(kandangID uuid.UUID) (*KandangFinancials, error) {
	transactions, err := s.txRepo.FindByKandang(kandangID)
	if err != nil {
		return nil, err
	}
	investors, err := s.kandangRepo.FindInvestorsByKandang(kandangID)
	if err != nil {
		return nil, err
	}

	var profit, totalInvestment float64
	for _, t := range transactions {
		if t.Type == model.TxIncome {
			profit += t.Amount
		} else {
			profit -= t.Amount
		}
	}
	for _, inv := range investors {
		totalInvestment += inv.InvestmentAmount
	}

	roi := 0.0
	if totalInvestment > 0 {
		roi = profit / totalInvestment * 100
	}

	return &KandangFinancials{
		ROI:             round1(roi),
		Profit:          profit,
		TotalInvestment: totalInvestment,
	}, nil
}
