package tmdb

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/reelistapp/reelist-server/internal/domain"
	"github.com/reelistapp/reelist-server/internal/resolve"
)

// TMDB ids are positive decimal integers.
var idRegex = regexp.MustCompile(`^[0-9]+$`)

// ValidateID checks if an identifier has valid format.
func ValidateID(id string) bool {
	return idRegex.MatchString(id)
}

// fetchPath returns the detail endpoint for one entity.
func fetchPath(ns domain.Namespace, id string) (string, bool) {
	switch ns {
	case domain.NamespacePerson:
		return "/person/" + id, true
	case domain.NamespaceCompany:
		return "/company/" + id, true
	case domain.NamespaceKeyword:
		return "/keyword/" + id, true
	case domain.NamespaceNetwork:
		return "/network/" + id, true
	default:
		return "", false
	}
}

// searchPath returns the search endpoint for a namespace. Networks have no
// search endpoint in the v3 API.
func searchPath(ns domain.Namespace) (string, bool) {
	switch ns {
	case domain.NamespacePerson:
		return "/search/person", true
	case domain.NamespaceCompany:
		return "/search/company", true
	case domain.NamespaceKeyword:
		return "/search/keyword", true
	default:
		return "", false
	}
}

type rawEntity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type rawSearchResponse struct {
	Page    int         `json:"page"`
	Results []rawEntity `json:"results"`
}

// FetchByID returns the display name of one entity. Implements
// resolve.Lookup.
func (c *Client) FetchByID(ctx context.Context, ns domain.Namespace, id string) (string, error) {
	if !ValidateID(id) {
		return "", wrapError("fetch", ns, id, ErrInvalidID)
	}
	path, ok := fetchPath(ns, id)
	if !ok {
		return "", wrapError("fetch", ns, id, ErrBadRequest)
	}

	body, err := c.doRequest(ctx, ns, path, nil)
	if err != nil {
		return "", wrapError("fetch", ns, id, err)
	}

	var entity rawEntity
	if err := json.Unmarshal(body, &entity); err != nil {
		return "", wrapError("fetch", ns, id, fmt.Errorf("parse response: %w", err))
	}
	if entity.Name == "" {
		return "", wrapError("fetch", ns, id, ErrNotFound)
	}
	return entity.Name, nil
}

// SearchByText returns ranked name candidates for a query. Implements
// resolve.Lookup. Network search is not supported by the API and always
// answers not found.
func (c *Client) SearchByText(ctx context.Context, ns domain.Namespace, text string) ([]resolve.Candidate, error) {
	path, ok := searchPath(ns)
	if !ok {
		return nil, wrapError("search", ns, "", ErrUnsupported)
	}

	query := url.Values{}
	query.Set("query", text)

	body, err := c.doRequest(ctx, ns, path, query)
	if err != nil {
		return nil, wrapError("search", ns, "", err)
	}

	var resp rawSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("search", ns, "", fmt.Errorf("parse response: %w", err))
	}

	candidates := make([]resolve.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Name == "" {
			continue
		}
		candidates = append(candidates, resolve.Candidate{
			ID:    strconv.FormatInt(r.ID, 10),
			Label: r.Name,
		})
	}
	return candidates, nil
}
