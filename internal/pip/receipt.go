package pip

import (
	"errors"

	"lspinstall/internal/result"
)

// SourceType identifies packages installed by this backend in receipts.
const SourceType = "pip3"

// ErrMissingPrimarySource is returned when building a receipt without a
// primary source.
var ErrMissingPrimarySource = errors.New("receipt has no primary source")

// Source identifies one installed package and the backend that installed it.
type Source struct {
	Type    string `json:"type"`
	Package string `json:"package"`
}

// Pip3Source returns a pip3 source for pkg with any extras stripped.
func Pip3Source(pkg string) Source {
	return Source{Type: SourceType, Package: NormalizePackageName(pkg)}
}

// Receipt records what an install produced. The primary source is the
// version-tracked package; secondary sources keep request order.
type Receipt struct {
	PrimarySource    Source   `json:"primary_source"`
	SecondarySources []Source `json:"secondary_sources"`
}

// ReceiptBuilder accumulates sources before producing a Receipt.
type ReceiptBuilder struct {
	primary   result.Optional[Source]
	secondary []Source
}

// NewReceiptBuilder returns an empty builder.
func NewReceiptBuilder() *ReceiptBuilder {
	return &ReceiptBuilder{}
}

// WithPrimarySource sets the primary source, replacing any previous one.
func (b *ReceiptBuilder) WithPrimarySource(s Source) *ReceiptBuilder {
	b.primary = result.Some(s)
	return b
}

// WithSecondarySource appends a secondary source.
func (b *ReceiptBuilder) WithSecondarySource(s Source) *ReceiptBuilder {
	b.secondary = append(b.secondary, s)
	return b
}

// Build returns the receipt, failing when no primary source was set.
func (b *ReceiptBuilder) Build() result.Result[Receipt] {
	return result.Map(b.primary.OrFail(ErrMissingPrimarySource), func(primary Source) Receipt {
		return Receipt{
			PrimarySource:    primary,
			SecondarySources: append([]Source{}, b.secondary...),
		}
	})
}

// receiptFor builds the receipt for packages: the first is primary, the rest
// are secondary in order.
func receiptFor(packages []string) result.Result[Receipt] {
	if len(packages) == 0 {
		return result.Failure[Receipt](ErrNoPackages)
	}
	b := NewReceiptBuilder().WithPrimarySource(Pip3Source(packages[0]))
	for _, pkg := range packages[1:] {
		b.WithSecondarySource(Pip3Source(pkg))
	}
	return b.Build()
}
