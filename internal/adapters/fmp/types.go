package fmp

import (
	"github.com/shopspring/decimal"
)

// Period selects the reporting interval for financial statements.
type Period string

const (
	PeriodQuarter Period = "quarter"
	PeriodAnnual  Period = "annual"
)

// Candle is one day of OHLCV data.
type Candle struct {
	Date   string          `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
}

// Quote is the real-time quote snapshot.
type Quote struct {
	Symbol            string          `json:"symbol"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	ChangesPercentage float64         `json:"changesPercentage"`
	Change            decimal.Decimal `json:"change"`
	DayLow            decimal.Decimal `json:"dayLow"`
	DayHigh           decimal.Decimal `json:"dayHigh"`
	YearHigh          decimal.Decimal `json:"yearHigh"`
	YearLow           decimal.Decimal `json:"yearLow"`
	MarketCap         decimal.Decimal `json:"marketCap"`
	PriceAvg50        decimal.Decimal `json:"priceAvg50"`
	PriceAvg200       decimal.Decimal `json:"priceAvg200"`
	Volume            decimal.Decimal `json:"volume"`
	AvgVolume         decimal.Decimal `json:"avgVolume"`
	Open              decimal.Decimal `json:"open"`
	PreviousClose     decimal.Decimal `json:"previousClose"`
	EPS               float64         `json:"eps"`
	PE                float64         `json:"pe"`
	Timestamp         int64           `json:"timestamp"`
}

// CompanyProfile is the company overview record.
type CompanyProfile struct {
	Symbol       string          `json:"symbol"`
	CompanyName  string          `json:"companyName"`
	Sector       string          `json:"sector"`
	Industry     string          `json:"industry"`
	Description  string          `json:"description"`
	MarketCap    decimal.Decimal `json:"mktCap"`
	Price        decimal.Decimal `json:"price"`
	Beta         float64         `json:"beta"`
	LastDividend float64         `json:"lastDiv"`
	Range        string          `json:"range"`
	Currency     string          `json:"currency"`
	Exchange     string          `json:"exchangeShortName"`
}

// RatiosTTM carries trailing-twelve-month valuation ratios.
type RatiosTTM struct {
	PERatio        float64 `json:"peRatioTTM"`
	PEGRatio       float64 `json:"pegRatioTTM"`
	PriceToBook    float64 `json:"priceToBookRatioTTM"`
	PriceToSales   float64 `json:"priceToSalesRatioTTM"`
	CurrentRatio   float64 `json:"currentRatioTTM"`
	QuickRatio     float64 `json:"quickRatioTTM"`
	DebtToEquity   float64 `json:"debtEquityRatioTTM"`
	GrossMargin    float64 `json:"grossProfitMarginTTM"`
	NetMargin      float64 `json:"netProfitMarginTTM"`
	ReturnOnEquity float64 `json:"returnOnEquityTTM"`
}

// BalanceSheet is one balance-sheet-statement period.
type BalanceSheet struct {
	Date                    string          `json:"date"`
	TotalAssets             decimal.Decimal `json:"totalAssets"`
	TotalCurrentAssets      decimal.Decimal `json:"totalCurrentAssets"`
	CashAndEquivalents      decimal.Decimal `json:"cashAndCashEquivalents"`
	TotalLiabilities        decimal.Decimal `json:"totalLiabilities"`
	TotalCurrentLiabilities decimal.Decimal `json:"totalCurrentLiabilities"`
	LongTermDebt            decimal.Decimal `json:"longTermDebt"`
	TotalStockholdersEquity decimal.Decimal `json:"totalStockholdersEquity"`
}

// IncomeStatement is one income-statement period.
type IncomeStatement struct {
	Date              string          `json:"date"`
	Revenue           decimal.Decimal `json:"revenue"`
	CostOfRevenue     decimal.Decimal `json:"costOfRevenue"`
	GrossProfit       decimal.Decimal `json:"grossProfit"`
	OperatingExpenses decimal.Decimal `json:"operatingExpenses"`
	RnDExpenses       decimal.Decimal `json:"researchAndDevelopmentExpenses"`
	OperatingIncome   decimal.Decimal `json:"operatingIncome"`
	EBITDA            decimal.Decimal `json:"ebitda"`
	NetIncome         decimal.Decimal `json:"netIncome"`
	EPS               float64         `json:"eps"`
	EPSDiluted        float64         `json:"epsdiluted"`
}

// CashFlowStatement is one cash-flow-statement period. Two json tags keep
// FMP's historical field-name typos.
type CashFlowStatement struct {
	Date                  string          `json:"date"`
	OperatingCashFlow     decimal.Decimal `json:"operatingCashFlow"`
	CapitalExpenditure    decimal.Decimal `json:"capitalExpenditure"`
	CashFlowFromInvesting decimal.Decimal `json:"netCashUsedForInvestingActivites"`
	CashFlowFromFinancing decimal.Decimal `json:"netCashUsedProvidedByFinancingActivities"`
	DividendsPaid         decimal.Decimal `json:"dividendsPaid"`
	NetChangeInCash       decimal.Decimal `json:"netChangeInCash"`
	FreeCashFlow          decimal.Decimal `json:"freeCashFlow"`
}

// EarningsSurprise is one reported quarter with its consensus estimate.
type EarningsSurprise struct {
	Date         string  `json:"date"`
	Symbol       string  `json:"symbol"`
	ActualEPS    float64 `json:"actualEarningResult"`
	EstimatedEPS float64 `json:"estimatedEarning"`
}

// Surprise returns the absolute earnings surprise for the quarter.
func (e EarningsSurprise) Surprise() float64 {
	return e.ActualEPS - e.EstimatedEPS
}
