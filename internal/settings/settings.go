// Package settings models the hierarchical settings catalog: sections
// spanning the account, organization, project and environment scopes,
// filterable by free-text search.
package settings

import "strings"

// Scope is the level a settings section applies at. Declaration order is
// the navigation order, broadest first.
type Scope string

const (
	ScopeUser         Scope = "user"
	ScopeOrganization Scope = "organization"
	ScopeProject      Scope = "project"
	ScopeEnvironment  Scope = "environment"
)

// Scopes lists all scopes in navigation order.
var Scopes = []Scope{ScopeUser, ScopeOrganization, ScopeProject, ScopeEnvironment}

// Setting is one configurable item within a section.
type Setting struct {
	ID          string
	Title       string
	Description string
}

// Section groups related settings under one scope.
type Section struct {
	ID       string
	Title    string
	Scope    Scope
	Settings []Setting
}

// Catalog is the full settings tree.
type Catalog struct {
	Sections []Section
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{Sections: []Section{
		{
			ID: "user-profile", Title: "Profile", Scope: ScopeUser,
			Settings: []Setting{
				{ID: "user-details", Title: "Details", Description: "Name and email"},
				{ID: "user-api-keys", Title: "Personal API keys", Description: "Tokens for programmatic access"},
				{ID: "user-notifications", Title: "Notifications", Description: "Email and in-app alerts"},
			},
		},
		{
			ID: "organization-details", Title: "Organization", Scope: ScopeOrganization,
			Settings: []Setting{
				{ID: "organization-display-name", Title: "Display name"},
				{ID: "organization-members", Title: "Members", Description: "Invitations and roles"},
				{ID: "organization-authentication", Title: "Authentication domains", Description: "SSO enforcement"},
			},
		},
		{
			ID: "project-details", Title: "Project", Scope: ScopeProject,
			Settings: []Setting{
				{ID: "project-display-name", Title: "Display name"},
				{ID: "project-authorized-urls", Title: "Authorized URLs", Description: "Origins the toolbar may launch on"},
			},
		},
		{
			ID: "environment-pipeline", Title: "Data pipeline", Scope: ScopeEnvironment,
			Settings: []Setting{
				{ID: "environment-transformations", Title: "Transformations", Description: "Functions applied to incoming events"},
				{ID: "environment-log-retention", Title: "Log retention", Description: "How long invocation logs are kept"},
			},
		},
		{
			ID: "environment-heatmaps", Title: "Heatmaps", Scope: ScopeEnvironment,
			Settings: []Setting{
				{ID: "environment-heatmap-capture", Title: "Heatmap capture", Description: "Record clicks and movement for overlays"},
			},
		},
	}}
}

// Filter returns the catalog pruned to sections and settings whose
// titles or descriptions match the query, case-insensitively. A section
// whose own title matches keeps all its settings. An empty query returns
// the catalog unchanged.
func (c *Catalog) Filter(query string) *Catalog {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return c
	}

	out := &Catalog{}
	for _, section := range c.Sections {
		if strings.Contains(strings.ToLower(section.Title), query) {
			out.Sections = append(out.Sections, section)
			continue
		}
		var kept []Setting
		for _, s := range section.Settings {
			if strings.Contains(strings.ToLower(s.Title), query) ||
				strings.Contains(strings.ToLower(s.Description), query) {
				kept = append(kept, s)
			}
		}
		if len(kept) > 0 {
			pruned := section
			pruned.Settings = kept
			out.Sections = append(out.Sections, pruned)
		}
	}
	return out
}

// ForScope returns the sections at one scope, preserving order.
func (c *Catalog) ForScope(scope Scope) []Section {
	var out []Section
	for _, s := range c.Sections {
		if s.Scope == scope {
			out = append(out, s)
		}
	}
	return out
}

// Flatten lists every setting with its section, in catalog order.
type FlatSetting struct {
	Section Section
	Setting Setting
}

// Flatten returns the catalog as a flat list.
func (c *Catalog) Flatten() []FlatSetting {
	var out []FlatSetting
	for _, section := range c.Sections {
		for _, s := range section.Settings {
			out = append(out, FlatSetting{Section: section, Setting: s})
		}
	}
	return out
}
