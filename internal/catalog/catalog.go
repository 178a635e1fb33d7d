// Package catalog holds the closed tagged sets the dashboard works with:
// staff codes, payment methods, product-label visit markers, and the
// interchange sentinels. Values outside the sets pass through untouched so
// old data keeps aggregating instead of erroring.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"studioledger/internal/core"
)

//go:embed catalog.toml
var defaultTOML []byte

// Visit is the outcome of classifying a transaction's product label.
type Visit int

const (
	VisitUnclassified Visit = iota
	VisitNew
	VisitReturning
)

type (
	fileStaff struct {
		Code    string   `toml:"code"`
		Aliases []string `toml:"aliases"`
	}

	filePayment struct {
		Code    string   `toml:"code"`
		Aliases []string `toml:"aliases"`
	}

	fileVisits struct {
		NewMarkers       []string `toml:"new_markers"`
		ReturningMarkers []string `toml:"returning_markers"`
	}

	fileInterchange struct {
		PointsMethod        string `toml:"points_method"`
		CoursePurchaseLabel string `toml:"course_purchase_label"`
		UsePointsLabel      string `toml:"use_points_label"`
	}

	file struct {
		DefaultStaff string          `toml:"default_staff"`
		Staff        []fileStaff     `toml:"staff"`
		Payment      []filePayment   `toml:"payment"`
		Visits       fileVisits      `toml:"visits"`
		Interchange  fileInterchange `toml:"interchange"`
	}
)

type Catalog struct {
	defaultStaff core.StaffCode
	staffOrder   []core.StaffCode
	staffAlias   map[string]core.StaffCode

	payOrder []core.PaymentMethod
	payAlias map[string]core.PaymentMethod

	newMarkers       []string
	returningMarkers []string

	pointsMethod        core.PaymentMethod
	coursePurchaseLabel string
	usePointsLabel      string
}

// Default returns the catalog built from the embedded definition.
func Default() *Catalog {
	c, err := parse(defaultTOML)
	if err != nil {
		// The embedded catalog ships with the binary; failing to parse it
		// is a build defect, not a runtime condition.
		panic(fmt.Sprintf("catalog: embedded catalog.toml: %v", err))
	}
	return c
}

// LoadFile reads a catalog override from disk.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	c, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	return c, nil
}

func parse(raw []byte) (*Catalog, error) {
	var f file
	if err := toml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	if len(f.Staff) == 0 {
		return nil, fmt.Errorf("no staff defined")
	}

	c := &Catalog{
		staffAlias:          make(map[string]core.StaffCode),
		payAlias:            make(map[string]core.PaymentMethod),
		newMarkers:          lowerAll(f.Visits.NewMarkers),
		returningMarkers:    lowerAll(f.Visits.ReturningMarkers),
		pointsMethod:        core.PaymentMethod(f.Interchange.PointsMethod),
		coursePurchaseLabel: f.Interchange.CoursePurchaseLabel,
		usePointsLabel:      f.Interchange.UsePointsLabel,
	}

	for _, s := range f.Staff {
		code := core.StaffCode(strings.TrimSpace(s.Code))
		if code == "" {
			continue
		}
		c.staffOrder = append(c.staffOrder, code)
		c.staffAlias[strings.ToLower(string(code))] = code
		for _, a := range s.Aliases {
			c.staffAlias[strings.ToLower(strings.TrimSpace(a))] = code
		}
	}

	for _, p := range f.Payment {
		code := core.PaymentMethod(strings.TrimSpace(p.Code))
		if code == "" {
			continue
		}
		c.payOrder = append(c.payOrder, code)
		c.payAlias[strings.ToLower(string(code))] = code
		for _, a := range p.Aliases {
			c.payAlias[strings.ToLower(strings.TrimSpace(a))] = code
		}
	}

	c.defaultStaff = core.StaffCode(strings.TrimSpace(f.DefaultStaff))
	if c.defaultStaff == "" {
		c.defaultStaff = c.staffOrder[0]
	}
	if _, ok := c.staffAlias[strings.ToLower(string(c.defaultStaff))]; !ok {
		return nil, fmt.Errorf("default staff %q not in staff set", c.defaultStaff)
	}

	return c, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DefaultStaff is the code transactions with no staff fall back to.
func (c *Catalog) DefaultStaff() core.StaffCode { return c.defaultStaff }

// StaffCodes returns the canonical staff set in catalog order.
func (c *Catalog) StaffCodes() []core.StaffCode {
	return append([]core.StaffCode(nil), c.staffOrder...)
}

// CanonicalStaff maps a raw staff identifier to its canonical code. Empty
// input falls back to the default staff member; legacy aliases remap to the
// current code; anything else passes through as-is. The remap is idempotent,
// so applying it on every snapshot read is safe.
func (c *Catalog) CanonicalStaff(raw string) core.StaffCode {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return c.defaultStaff
	}
	if code, ok := c.staffAlias[strings.ToLower(raw)]; ok {
		return code
	}
	return core.StaffCode(raw)
}

// KnownStaff reports whether code is in the canonical set.
func (c *Catalog) KnownStaff(code core.StaffCode) bool {
	_, ok := c.staffAlias[strings.ToLower(string(code))]
	return ok
}

// PaymentMethods returns the fixed payment bucket set in catalog order.
func (c *Catalog) PaymentMethods() []core.PaymentMethod {
	return append([]core.PaymentMethod(nil), c.payOrder...)
}

// CanonicalPayment maps a raw payment label to its canonical method, passing
// unrecognized labels through. The stats layer ignores anything that is not
// in the bucket set, so pass-through keeps the lenient source behavior.
func (c *Catalog) CanonicalPayment(raw string) core.PaymentMethod {
	raw = strings.TrimSpace(raw)
	if m, ok := c.payAlias[strings.ToLower(raw)]; ok {
		return m
	}
	return core.PaymentMethod(raw)
}

// KnownPayment reports whether method is one of the fixed buckets.
func (c *Catalog) KnownPayment(m core.PaymentMethod) bool {
	_, ok := c.payAlias[strings.ToLower(string(m))]
	return ok
}

// ClassifyVisit buckets a transaction by its product label: the new-client
// trial marker wins, then the returning markers, else unclassified. Matching
// is case-insensitive substring containment.
func (c *Catalog) ClassifyVisit(product string) Visit {
	p := strings.ToLower(product)
	for _, m := range c.newMarkers {
		if strings.Contains(p, m) {
			return VisitNew
		}
	}
	for _, m := range c.returningMarkers {
		if strings.Contains(p, m) {
			return VisitReturning
		}
	}
	return VisitUnclassified
}

// IsPointsMethod reports whether m is the prepaid-points sentinel: on import
// its amount does not post to the deposit axis.
func (c *Catalog) IsPointsMethod(m core.PaymentMethod) bool {
	return m == c.pointsMethod
}

// CoursePurchaseLabel is the burn-method sentinel: rows carrying it do not
// post to the burn axis.
func (c *Catalog) CoursePurchaseLabel() string { return c.coursePurchaseLabel }

// UsePointsLabel is the derived burn-method label exported for transactions
// with a nonzero burn.
func (c *Catalog) UsePointsLabel() string { return c.usePointsLabel }
