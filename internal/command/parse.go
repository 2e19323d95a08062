package command

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingArgs = errors.New("missing arguments")
	ErrBadAmount   = errors.New("invalid amount")
	ErrBadDay      = errors.New("invalid day of month")
)

// reAmount matches what fits a NUMERIC(20,4) column: at most 16 integer digits and
// 4 decimal places, no sign or exponent.
var reAmount = regexp.MustCompile(`^[0-9]{1,16}(\.[0-9]{1,4})?$`)

// UsageError reports arguments that do not fit a command's schema.
type UsageError struct {
	Kind     Kind
	UsageKey string
	Err      error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("command %s: %v", e.Kind, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// Invocation is a parsed command with its positional arguments.
type Invocation struct {
	Kind Kind
	Args []string
}

// Parse splits payload on whitespace and checks the argument count for kind.
func Parse(kind Kind, payload string) (Invocation, error) {
	inv := Invocation{Kind: kind, Args: strings.Fields(payload)}
	if len(inv.Args) < kind.Spec().MinArgs {
		return inv, inv.usage(ErrMissingArgs)
	}
	return inv, nil
}

// Word returns the i-th argument verbatim.
func (inv Invocation) Word(i int) string {
	if i < 0 || i >= len(inv.Args) {
		return ""
	}
	return inv.Args[i]
}

// Note joins the arguments after the required ones with single spaces.
func (inv Invocation) Note() string {
	from := inv.Kind.Spec().NoteFrom
	if from < 0 || from >= len(inv.Args) {
		return ""
	}
	return strings.Join(inv.Args[from:], " ")
}

// Amount parses the i-th argument as a positive decimal.
func (inv Invocation) Amount(i int) (decimal.Decimal, error) {
	raw := normalizeNumber(inv.Word(i))
	if raw == "" {
		return decimal.Zero, inv.usage(ErrBadAmount)
	}

	if !reAmount.MatchString(raw) {
		return decimal.Zero, inv.usage(fmt.Errorf("%w %q", ErrBadAmount, inv.Word(i)))
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, inv.usage(fmt.Errorf("%w %q: %v", ErrBadAmount, inv.Word(i), err))
	}
	if !amount.IsPositive() {
		return decimal.Zero, inv.usage(fmt.Errorf("%w %q: must be positive", ErrBadAmount, inv.Word(i)))
	}

	return amount, nil
}

// Day parses the i-th argument as a day of month between 1 and 31.
func (inv Invocation) Day(i int) (int, error) {
	day, err := strconv.Atoi(normalizeNumber(inv.Word(i)))
	if err != nil {
		return 0, inv.usage(fmt.Errorf("%w %q", ErrBadDay, inv.Word(i)))
	}
	if day < 1 || day > 31 {
		return 0, inv.usage(fmt.Errorf("%w %d", ErrBadDay, day))
	}
	return day, nil
}

func (inv Invocation) usage(err error) *UsageError {
	return &UsageError{Kind: inv.Kind, UsageKey: inv.Kind.Spec().UsageKey, Err: err}
}

// normalizeNumber maps Arabic-Indic and Persian digits to ASCII, turns the Arabic decimal
// separator into a dot and drops thousands separators.
func normalizeNumber(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '٠' && r <= '٩':
			b.WriteRune('0' + (r - '٠'))
		case r >= '۰' && r <= '۹':
			b.WriteRune('0' + (r - '۰'))
		case r == '٫':
			b.WriteRune('.')
		case r == ',' || r == '٬' || r == '_':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
