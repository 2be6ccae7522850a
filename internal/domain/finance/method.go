package finance

import "strings"

// RepaymentMethod defines how principal and interest are repaid over a
// loan's term. The variant set is closed.
type RepaymentMethod string

const (
	// MethodEqualInstallment pays a constant total amount each period.
	MethodEqualInstallment RepaymentMethod = "EQUAL_INSTALLMENT"
	// MethodEqualPrincipal pays a constant principal amount each period.
	MethodEqualPrincipal RepaymentMethod = "EQUAL_PRINCIPAL"
	// MethodBullet pays interest only until maturity.
	MethodBullet RepaymentMethod = "BULLET"
)

// ParseRepaymentMethod normalizes an external repayment-method tag.
// Unrecognized tags fall back to MethodEqualPrincipal; the second return
// value reports whether normalization happened so callers can log it.
func ParseRepaymentMethod(tag string) (RepaymentMethod, bool) {
	switch RepaymentMethod(strings.ToUpper(strings.TrimSpace(tag))) {
	case MethodEqualInstallment:
		return MethodEqualInstallment, false
	case MethodEqualPrincipal:
		return MethodEqualPrincipal, false
	case MethodBullet:
		return MethodBullet, false
	default:
		return MethodEqualPrincipal, true
	}
}

func (m RepaymentMethod) String() string { return string(m) }
