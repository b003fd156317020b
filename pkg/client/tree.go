package client

import (
	"context"
	"net/http"

	"github.com/matzehuels/teamtree/pkg/errors"
	"github.com/matzehuels/teamtree/pkg/tree"
)

// FetchResponse loads the raw tree envelope for kind.
func (c *Client) FetchResponse(ctx context.Context, kind tree.Kind) (*tree.Response, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}

	path := c.paths.Tree(kind)
	var out *tree.Response
	err = c.do(ctx, http.MethodGet, path, token, nil, func(resp *http.Response) error {
		r, err := tree.Decode(resp.Body)
		if err != nil {
			return errors.Wrap(errors.ErrCodeMalformed, err, "GET %s", path)
		}
		if !r.Success {
			return backendError(resp.StatusCode, r.Message)
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchTree loads the tree for kind and maps it with the kind's profile. A
// response without a tree yields a nil root and no error.
func (c *Client) FetchTree(ctx context.Context, kind tree.Kind) (*tree.Node, tree.Stats, error) {
	resp, err := c.FetchResponse(ctx, kind)
	if err != nil {
		return nil, nil, err
	}
	root := tree.Map(resp.Tree, kind.Profile())
	c.logger.Debug("mapped tree", "kind", kind, "nodes", root.Count(), "depth", root.Depth())
	return root, resp.Stats, nil
}
