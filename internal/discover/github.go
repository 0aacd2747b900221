package discover

import (
	"context"
	"fmt"

	"github.com/google/go-github/v81/github"

	gh "codemine/internal/github"
)

// searchPageSize is the GitHub search API's per-query result ceiling for
// one page; the window bisection works around it, so a single page per
// window is all the enumeration ever asks for.
const searchPageSize = 100

// SearchClient is the GitHub-backed Searcher.
type SearchClient struct {
	client *gh.Client
}

func NewSearchClient(client *gh.Client) *SearchClient {
	return &SearchClient{client: client}
}

func (s *SearchClient) Search(ctx context.Context, language string, w Window) ([]Repo, error) {
	query := fmt.Sprintf("language:%s stars:%s", language, w.StarsQualifier())
	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: searchPageSize},
	}

	result, _, err := s.client.Client.Search.Repositories(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search repositories %q: %w", query, err)
	}

	repos := make([]Repo, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		repos = append(repos, Repo{
			FullName: r.GetFullName(),
			Stars:    r.GetStargazersCount(),
		})
	}
	return repos, nil
}
