package accounts

import "github.com/cleared-dev/intake/internal/model"

// DefaultChart returns the chart of accounts written by `intake init`.
func DefaultChart() []model.Account {
	return []model.Account{
		{Code: "1010", Name: "Business Checking", Type: model.AccountTypeAsset, Description: "Primary checking account"},
		{Code: "1020", Name: "Business Savings", Type: model.AccountTypeAsset, Description: "Savings account"},
		{Code: "2010", Name: "Credit Card", Type: model.AccountTypeLiability, Description: "Business credit card"},
		{Code: "3010", Name: "Owner's Equity", Type: model.AccountTypeEquity, Description: "Owner contributions and draws"},
		{Code: "4010", Name: "Service Revenue", Type: model.AccountTypeRevenue},
		{Code: "4020", Name: "Interest Income", Type: model.AccountTypeRevenue},
		{Code: "5010", Name: "Advertising & Marketing", Type: model.AccountTypeExpense},
		{Code: "5020", Name: "Software & SaaS", Type: model.AccountTypeExpense, Description: "Software subscriptions and cloud hosting"},
		{Code: "5030", Name: "Office Supplies", Type: model.AccountTypeExpense},
		{Code: "5040", Name: "Professional Services", Type: model.AccountTypeExpense, Description: "Legal, accounting, consulting"},
		{Code: "5050", Name: "Meals", Type: model.AccountTypeExpense},
		{Code: "5060", Name: "Utilities & Internet", Type: model.AccountTypeExpense},
		{Code: "5070", Name: "Bank Fees", Type: model.AccountTypeExpense},
	}
}
