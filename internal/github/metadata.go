package github

import (
	"context"
	"fmt"
)

// RepositoryLicense returns the SPDX identifier of a repository's
// detected license, or "" when GitHub reports none.
func (c *Client) RepositoryLicense(ctx context.Context, owner, name string) (string, error) {
	repo, _, err := c.Client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return "", fmt.Errorf("get repository %s/%s: %w", owner, name, err)
	}
	return repo.GetLicense().GetSPDXID(), nil
}
