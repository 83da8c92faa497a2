// Package ldap is the production directory backend. Identity is the entry DN;
// the telephone attribute is rewritten with a modify-replace so re-applying
// the same value is a no-op on the server side.
package ldap

import (
	"context"
	"fmt"

	goldap "github.com/go-ldap/ldap/v3"

	"phonefix/internal/directory"
)

const (
	attrDisplayName   = "displayName"
	attrPrincipalName = "userPrincipalName"
	attrPhone         = "telephoneNumber"

	// candidateFilter matches every entry whose number starts with the trunk
	// zero. Keep in sync with directory.CandidatePrefix.
	candidateFilter = "(telephoneNumber=0*)"
)

// Config carries connection settings for one LDAP directory.
type Config struct {
	URL          string
	BindDN       string
	BindPassword string
	BaseDN       string
}

// conn is the subset of *goldap.Conn the store uses, split out so the mapping
// and error paths are testable without a live server.
type conn interface {
	Search(*goldap.SearchRequest) (*goldap.SearchResult, error)
	Modify(*goldap.ModifyRequest) error
	WhoAmI([]goldap.Control) (*goldap.WhoAmIResult, error)
	Close() error
}

// Store implements directory.Gateway over an LDAP subtree.
type Store struct {
	conn   conn
	baseDN string
}

// Dial connects and binds. The caller owns Close.
func Dial(cfg Config) (*Store, error) {
	c, err := goldap.DialURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial ldap: %w", err)
	}
	if err := c.Bind(cfg.BindDN, cfg.BindPassword); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("bind ldap: %w", err)
	}
	return &Store{conn: c, baseDN: cfg.BaseDN}, nil
}

func (s *Store) QueryCandidates(_ context.Context) ([]directory.Account, error) {
	req := goldap.NewSearchRequest(
		s.baseDN,
		goldap.ScopeWholeSubtree,
		goldap.NeverDerefAliases,
		0, 0, false,
		candidateFilter,
		[]string{attrDisplayName, attrPrincipalName, attrPhone},
		nil,
	)
	res, err := s.conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}

	out := make([]directory.Account, 0, len(res.Entries))
	for _, entry := range res.Entries {
		out = append(out, entryToAccount(entry))
	}
	return out, nil
}

func (s *Store) UpdateNumber(_ context.Context, identity, newValue string) error {
	req := goldap.NewModifyRequest(identity, nil)
	req.Replace(attrPhone, []string{newValue})
	if err := s.conn.Modify(req); err != nil {
		return fmt.Errorf("modify %s: %w", identity, err)
	}
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	if _, err := s.conn.WhoAmI(nil); err != nil {
		return fmt.Errorf("ldap whoami: %w", err)
	}
	return nil
}

// Close tears down the bound connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func entryToAccount(entry *goldap.Entry) directory.Account {
	return directory.Account{
		Identity:      entry.DN,
		DisplayName:   entry.GetAttributeValue(attrDisplayName),
		PrincipalName: entry.GetAttributeValue(attrPrincipalName),
		OldNumber:     entry.GetAttributeValue(attrPhone),
	}
}
