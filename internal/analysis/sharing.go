package analysis

import (
	"strings"

	"github.com/olegrjumin/privacyparrot/internal/catalog"
)

// DetectDataSharing collects third-party hosts referenced by the page,
// matches them against the company table and enriches each match with its
// region and corporate owner
func (d *Detectors) DetectDataSharing(p Page) DataSharingInfo {
	hosts := d.thirdPartyHosts(p)
	companies := d.matchCompanies(hosts)
	mentions := d.policyMentionsSharing(p)

	return DataSharingInfo{
		ThirdPartyDomains: len(hosts),
		DataCompanies:     companies,
		ConnectedEntities: BuildOwnershipEdges(companies),
		MentionsInPolicy:  mentions,
		SharingLevel:      sharingLevel(len(companies), mentions),
	}
}

// thirdPartyHosts resolves every referenced URL to a hostname. References
// that fail to resolve, resolve to no host, or point back at the page's
// own host are skipped.
func (d *Detectors) thirdPartyHosts(p Page) []string {
	own := p.Hostname()

	hosts := make([]string, 0)
	seen := make(map[string]bool)
	for _, ref := range p.References(d.catalog.Sharing.SourceSelectors) {
		host, err := p.ResolveHost(ref)
		if err != nil || host == "" || host == own || seen[host] {
			continue
		}
		seen[host] = true
		hosts = append(hosts, host)
	}
	return hosts
}

// matchCompanies returns the table companies whose domain appears in any
// host, in table order, one entry per company name
func (d *Detectors) matchCompanies(hosts []string) []DataCompany {
	companies := make([]DataCompany, 0)
	seen := make(map[string]bool)
	for _, c := range d.catalog.Companies {
		if seen[c.Name] || !anyContains(hosts, c.Domain) {
			continue
		}
		seen[c.Name] = true
		companies = append(companies, Enrich(d.catalog, c))
	}
	return companies
}

// policyMentionsSharing checks privacy-policy text for data-sharing phrases.
// Pages that are not privacy pages contribute no text.
func (d *Detectors) policyMentionsSharing(p Page) bool {
	sharing := d.catalog.Sharing
	isPrivacyPage := strings.Contains(strings.ToLower(p.URL()), sharing.PrivacyURLTerm) ||
		strings.Contains(strings.ToLower(p.Title()), sharing.PrivacyTitleTerm)
	if !isPrivacyPage {
		return false
	}

	text := strings.ToLower(p.MainText(sharing.ContentSelectors))
	return containsAny(text, sharing.Keywords)
}

// Enrich attaches region and owner to a table company
func Enrich(c *catalog.Catalog, company catalog.Company) DataCompany {
	dc := DataCompany{
		Domain: company.Domain,
		Name:   company.Name,
		Type:   company.Type,
		Region: c.RegionFor(company.Domain),
	}
	if owner, ok := c.OwnerFor(company.Domain); ok {
		dc.Owner = &owner
	}
	return dc
}

// BuildOwnershipEdges links companies sharing an owner. Owners are visited
// in order of first appearance and each group yields a chain of adjacent
// pairs, so a group of n companies produces n-1 edges.
func BuildOwnershipEdges(companies []DataCompany) []OwnershipEdge {
	owners := make([]string, 0)
	groups := make(map[string][]string)
	for _, c := range companies {
		if c.Owner == nil {
			continue
		}
		owner := *c.Owner
		if _, ok := groups[owner]; !ok {
			owners = append(owners, owner)
		}
		groups[owner] = append(groups[owner], c.Name)
	}

	edges := make([]OwnershipEdge, 0)
	for _, owner := range owners {
		members := groups[owner]
		for i := 0; i < len(members)-1; i++ {
			edges = append(edges, OwnershipEdge{
				From:         members[i],
				To:           members[i+1],
				Relationship: RelationshipSameParent,
			})
		}
	}
	return edges
}

func sharingLevel(companies int, mentions bool) Level {
	if companies > 3 || (companies > 0 && mentions) {
		return LevelHigh
	}
	if companies > 0 || mentions {
		return LevelMedium
	}
	return LevelLow
}

func anyContains(hosts []string, domain string) bool {
	for _, h := range hosts {
		if strings.Contains(h, domain) {
			return true
		}
	}
	return false
}
