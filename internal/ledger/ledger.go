// Package ledger holds the pure money rules: deriving category spending,
// computing spend corrections, moving goals through their milestones and
// applying savings operations. Nothing here touches the database.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
)

// SpendCorrectionThreshold is the smallest difference between desired and
// current spending that produces a correcting transaction.
var SpendCorrectionThreshold = decimal.NewFromFloat(0.01)

// MoneyScale is the number of fractional digits kept for every amount.
const MoneyScale = 2

// maxMoney bounds amounts to what a numeric(14,2) column holds.
var maxMoney = decimal.New(1, 12)

// CheckMoney rejects amounts that cannot be stored exactly: more than
// MoneyScale fractional digits, or twelve or more integer digits.
func CheckMoney(field string, amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, field+" must have at most 2 decimal places")
	}
	if amount.Abs().GreaterThanOrEqual(maxMoney) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, field+" is too large")
	}
	return nil
}

// Milestones are the goal progress percentages that trigger a notification.
var Milestones = []int{20, 50, 80, 100}

var hundred = decimal.NewFromInt(100)

// SignedSpent folds a category's transactions: expenses add, income subtracts.
// The result may be negative.
func SignedSpent(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case models.TransactionTypeExpense:
			total = total.Add(tx.Amount)
		case models.TransactionTypeIncome:
			total = total.Sub(tx.Amount)
		}
	}
	return total
}

// Spent is SignedSpent clamped at zero, as shown to the user.
func Spent(txs []models.Transaction) decimal.Decimal {
	s := SignedSpent(txs)
	if s.IsNegative() {
		return decimal.Zero
	}
	return s
}

// Correction returns the transaction that moves current spending to desired.
// ok is false when the two are within SpendCorrectionThreshold.
func Correction(current, desired decimal.Decimal) (models.TransactionType, decimal.Decimal, bool) {
	diff := desired.Sub(current)
	if diff.Abs().LessThanOrEqual(SpendCorrectionThreshold) {
		return "", decimal.Zero, false
	}
	if diff.IsPositive() {
		return models.TransactionTypeExpense, diff, true
	}
	return models.TransactionTypeIncome, diff.Abs(), true
}

// CorrectionDescription is the description given to a correcting transaction.
func CorrectionDescription(t models.TransactionType) string {
	if t == models.TransactionTypeIncome {
		return "Spending correction (decrease)"
	}
	return "Spending correction"
}

// Percentage is floor(amount / target * 100). A non-positive target yields 0.
func Percentage(amount, target decimal.Decimal) int64 {
	if !target.IsPositive() {
		return 0
	}
	return amount.Mul(hundred).Div(target).Floor().IntPart()
}

// DisplayPercentage is the rounded progress shown in goal listings.
func DisplayPercentage(amount, target decimal.Decimal) int64 {
	if !target.IsPositive() {
		return 0
	}
	return amount.Mul(hundred).Div(target).Round(0).IntPart()
}

// CrossedMilestones returns the milestones m with oldPct < m <= newPct.
// Only positive contributions cross milestones.
func CrossedMilestones(oldAmount, newAmount, target, signed decimal.Decimal) []int {
	if !signed.IsPositive() {
		return nil
	}
	oldPct := Percentage(oldAmount, target)
	newPct := Percentage(newAmount, target)
	var crossed []int
	for _, m := range Milestones {
		if oldPct < int64(m) && int64(m) <= newPct {
			crossed = append(crossed, m)
		}
	}
	return crossed
}

// ContributionNote is the default note of a goal transaction.
func ContributionNote(signed decimal.Decimal) string {
	if signed.IsNegative() {
		return "Withdrawal"
	}
	return "Top-up"
}

// ApplyContribution adds signed to the goal's current amount and updates its
// status. It returns the milestones crossed by this contribution. The goal is
// left untouched when the result would be negative.
func ApplyContribution(goal *models.Goal, signed decimal.Decimal, now time.Time) ([]int, error) {
	if signed.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be zero")
	}
	if err := CheckMoney("amount", signed); err != nil {
		return nil, err
	}
	oldAmount := goal.CurrentAmount
	newAmount := oldAmount.Add(signed)
	if newAmount.IsNegative() {
		return nil, apperrors.ErrInsufficientFunds
	}

	crossed := CrossedMilestones(oldAmount, newAmount, goal.TargetAmount, signed)

	wasCompleted := goal.Status == models.GoalStatusCompleted
	reached := newAmount.GreaterThanOrEqual(goal.TargetAmount)
	switch {
	case reached && !wasCompleted:
		goal.Status = models.GoalStatusCompleted
		completedAt := now
		goal.CompletedAt = &completedAt
	case !reached && wasCompleted:
		goal.Status = models.GoalStatusActive
		goal.CompletedAt = nil
	}
	goal.CurrentAmount = newAmount
	return crossed, nil
}

// ApplySavings returns the signed log amount and the new balance for a
// savings operation.
func ApplySavings(balance, amount decimal.Decimal, op models.SavingsOperation) (decimal.Decimal, decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, balance, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if err := CheckMoney("amount", amount); err != nil {
		return decimal.Zero, balance, err
	}
	var signed decimal.Decimal
	switch op {
	case models.SavingsOperationAdd:
		signed = amount
	case models.SavingsOperationSubtract:
		signed = amount.Neg()
	default:
		return decimal.Zero, balance, apperrors.WithMessage(apperrors.ErrInvalidInput, "operation must be ADD or SUBTRACT")
	}
	newBalance := balance.Add(signed)
	if newBalance.IsNegative() {
		return decimal.Zero, balance, apperrors.ErrInsufficientFunds
	}
	return signed, newBalance, nil
}

// SavingsDescription is the default description of a savings log entry.
func SavingsDescription(op models.SavingsOperation) string {
	if op == models.SavingsOperationSubtract {
		return "Withdrawal"
	}
	return "Top-up"
}
