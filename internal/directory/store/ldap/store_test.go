package ldap

import (
	"context"
	"errors"
	"testing"

	goldap "github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	searchReq  *goldap.SearchRequest
	searchRes  *goldap.SearchResult
	searchErr  error
	modifyReqs []*goldap.ModifyRequest
	modifyErr  error
	whoAmIErr  error
}

func (f *fakeConn) Search(req *goldap.SearchRequest) (*goldap.SearchResult, error) {
	f.searchReq = req
	return f.searchRes, f.searchErr
}

func (f *fakeConn) Modify(req *goldap.ModifyRequest) error {
	f.modifyReqs = append(f.modifyReqs, req)
	return f.modifyErr
}

func (f *fakeConn) WhoAmI([]goldap.Control) (*goldap.WhoAmIResult, error) {
	return &goldap.WhoAmIResult{}, f.whoAmIErr
}

func (f *fakeConn) Close() error { return nil }

func entry(dn, name, upn, number string) *goldap.Entry {
	return &goldap.Entry{
		DN: dn,
		Attributes: []*goldap.EntryAttribute{
			{Name: attrDisplayName, Values: []string{name}},
			{Name: attrPrincipalName, Values: []string{upn}},
			{Name: attrPhone, Values: []string{number}},
		},
	}
}

func TestQueryCandidates_MapsEntries(t *testing.T) {
	fake := &fakeConn{
		searchRes: &goldap.SearchResult{Entries: []*goldap.Entry{
			entry("CN=Ada,OU=Staff,DC=example,DC=org", "Ada Lovelace", "ada@example.org", "0207 123 4567"),
		}},
	}
	store := &Store{conn: fake, baseDN: "DC=example,DC=org"}

	got, err := store.QueryCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "CN=Ada,OU=Staff,DC=example,DC=org", got[0].Identity)
	assert.Equal(t, "Ada Lovelace", got[0].DisplayName)
	assert.Equal(t, "ada@example.org", got[0].PrincipalName)
	assert.Equal(t, "0207 123 4567", got[0].OldNumber)

	require.NotNil(t, fake.searchReq)
	assert.Equal(t, "DC=example,DC=org", fake.searchReq.BaseDN)
	assert.Equal(t, candidateFilter, fake.searchReq.Filter)
}

func TestUpdateNumber_ModifyReplace(t *testing.T) {
	fake := &fakeConn{}
	store := &Store{conn: fake, baseDN: "DC=example,DC=org"}

	err := store.UpdateNumber(context.Background(), "CN=Ada,DC=example,DC=org", "+442071234567")
	require.NoError(t, err)

	require.Len(t, fake.modifyReqs, 1)
	req := fake.modifyReqs[0]
	assert.Equal(t, "CN=Ada,DC=example,DC=org", req.DN)
	require.Len(t, req.Changes, 1)
	assert.Equal(t, uint(goldap.ReplaceAttribute), req.Changes[0].Operation)
	assert.Equal(t, attrPhone, req.Changes[0].Modification.Type)
	assert.Equal(t, []string{"+442071234567"}, req.Changes[0].Modification.Vals)
}

func TestUpdateNumber_WrapsServerError(t *testing.T) {
	fake := &fakeConn{modifyErr: errors.New("insufficient access rights")}
	store := &Store{conn: fake, baseDN: "DC=example,DC=org"}

	err := store.UpdateNumber(context.Background(), "CN=Ada,DC=example,DC=org", "+442071234567")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient access rights")
}

func TestPing_ReportsUnreachableDirectory(t *testing.T) {
	fake := &fakeConn{whoAmIErr: errors.New("connection reset")}
	store := &Store{conn: fake, baseDN: "DC=example,DC=org"}

	require.Error(t, store.Ping(context.Background()))
}
