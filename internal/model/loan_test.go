package model

import (
	"testing"
	"time"
)

func TestLoanEffectiveStatus(t *testing.T) {
	today, _ := time.Parse(DateLayout, "2024-01-20")

	tests := []struct {
		name     string
		loan     Loan
		expected string
	}{
		{"issued before due date", Loan{Status: LoanStatusIssued, DueDate: "2024-01-25"}, LoanStatusIssued},
		{"issued on due date", Loan{Status: LoanStatusIssued, DueDate: "2024-01-20"}, LoanStatusIssued},
		{"issued past due date", Loan{Status: LoanStatusIssued, DueDate: "2024-01-15"}, LoanStatusOverdue},
		{"returned stays returned", Loan{Status: LoanStatusReturned, DueDate: "2024-01-15"}, LoanStatusReturned},
		{"unparseable due date left as-is", Loan{Status: LoanStatusIssued, DueDate: "someday"}, LoanStatusIssued},
	}

	for _, tt := range tests {
		if got := tt.loan.EffectiveStatus(today); got != tt.expected {
			t.Errorf("%s: EffectiveStatus = %q, want %q", tt.name, got, tt.expected)
		}
	}
}
