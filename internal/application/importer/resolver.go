package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchOne
	MatchAmbiguous
)

type Match struct {
	Kind   MatchKind
	Client *domain.Client
}

// IdentityResolver finds the existing client a row refers to.
type IdentityResolver struct {
	store   domain.Store
	ownerID string
}

func NewIdentityResolver(store domain.Store, ownerID string) *IdentityResolver {
	return &IdentityResolver{store: store, ownerID: ownerID}
}

func (r *IdentityResolver) Resolve(ctx context.Context, row domain.ImportRow) (Match, error) {
	clients, err := r.store.FindClientsByName(ctx, r.ownerID, normalizeName(row.FirstName), normalizeName(row.LastName))
	if err != nil {
		return Match{}, fmt.Errorf("find clients by name: %w", err)
	}

	switch len(clients) {
	case 0:
		return Match{Kind: MatchNone}, nil
	case 1:
		return Match{Kind: MatchOne, Client: &clients[0]}, nil
	default:
		return Match{Kind: MatchAmbiguous}, nil
	}
}

// DiffClient builds a patch of the updatable fields where row differs from
// existing. Empty incoming values never clear stored ones.
func DiffClient(existing domain.Client, row domain.ImportRow) domain.ClientPatch {
	var patch domain.ClientPatch

	patch.MiddleName = diffText(existing.MiddleName, row.MiddleName)
	if row.DOB != nil && !sameInstant(existing.DOB, row.DOB) {
		dob := *row.DOB
		patch.DOB = &dob
	}
	patch.SSN = diffText(existing.SSN, row.SSN)
	patch.TaxFilingStatus = diffText(existing.TaxFilingStatus, row.TaxFilingStatus)
	patch.MaritalStatus = diffText(existing.MaritalStatus, row.MaritalStatus)
	patch.MobileNumber = diffText(existing.MobileNumber, row.MobileNumber)
	patch.HomePhone = diffText(existing.HomePhone, row.HomePhone)
	patch.Email = diffText(existing.Email, row.Email)
	patch.HomeAddress = diffText(existing.HomeAddress, row.HomeAddress)
	return patch
}

func diffText(current, incoming string) *string {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" || strings.EqualFold(collapseSpace(current), collapseSpace(incoming)) {
		return nil
	}
	return &incoming
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func fieldNames(fields []domain.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return names
}
