package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/owais185-web/LuminaLMSPush/core/transaction"
)

// InstructorShare is the part of the revenue paid out to instructors.
var InstructorShare = decimal.RequireFromString("0.7")

type FinancialReport struct {
	Revenue           decimal.Decimal            `json:"revenue"` // succeeded only
	Refunds           decimal.Decimal            `json:"refunds"`
	InstructorPayouts decimal.Decimal            `json:"instructorPayouts"`
	NetProfit         decimal.Decimal            `json:"netProfit"`
	Counts            map[transaction.Status]int `json:"counts"`
	Transactions      int                        `json:"transactions"`
}

// Report summarizes every recorded transaction.
func (svc *Service) Report(ctx context.Context) FinancialReport {
	return Summarize(svc.Transactions.GetAll(ctx))
}

func Summarize(txs []transaction.Transaction) FinancialReport {
	rep := FinancialReport{
		Revenue: decimal.Zero,
		Refunds: decimal.Zero,
		Counts:  make(map[transaction.Status]int),
	}
	for _, tx := range txs {
		rep.Transactions++
		rep.Counts[tx.Status]++
		switch tx.Status {
		case transaction.StatusSucceeded:
			rep.Revenue = rep.Revenue.Add(tx.Amount)
		case transaction.StatusRefunded:
			rep.Refunds = rep.Refunds.Add(tx.Amount)
		}
	}
	rep.InstructorPayouts = rep.Revenue.Mul(InstructorShare).Round(2)
	rep.NetProfit = rep.Revenue.Sub(rep.InstructorPayouts).Sub(rep.Refunds)
	return rep
}
