package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func vectorTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_vector_create_collection",
				mcp.WithDescription("Create a named vector collection with a fixed dimension and metric."),
				mcp.WithString("collection", mcp.Required()),
				mcp.WithNumber("dimension", mcp.Required()),
				mcp.WithString("metric", mcp.Description("cosine (default), dot, or l2"), mcp.Enum("cosine", "dot", "l2")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				collection, err := convert.GetStringArg(args, "collection")
				if err != nil {
					return nil, err
				}
				dimension, err := convert.GetU64Arg(args, "dimension")
				if err != nil {
					return nil, err
				}
				metric := convert.GetOptionalString(args, "metric", "")
				out, err := s.Execute(stratadb.VectorCreateCollection{
					Collection: collection, Dimension: dimension, Metric: metric,
				})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_vector_collections",
				mcp.WithDescription("List vector collections with dimension, metric, count, and memory usage."),
			),
			Handler: func(s *session.Session, _ map[string]any) (any, error) {
				out, err := s.Execute(stratadb.VectorCollections{})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_vector_drop_collection",
				mcp.WithDescription("Remove a collection and all of its vectors."),
				mcp.WithString("collection", mcp.Required()),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				collection, err := convert.GetStringArg(args, "collection")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.VectorDropCollection{Collection: collection})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_vector_upsert",
				mcp.WithDescription("Insert or replace a vector by key. The embedding must match the collection's dimension. Returns { version }."),
				mcp.WithString("collection", mcp.Required()),
				mcp.WithString("key", mcp.Required()),
				mcp.WithArray("embedding", mcp.Required(), mcp.Items(map[string]any{"type": "number"})),
				mcp.WithObject("metadata", mcp.Description("Optional JSON metadata stored with the vector")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				collection, err := convert.GetStringArg(args, "collection")
				if err != nil {
					return nil, err
				}
				key, err := convert.GetStringArg(args, "key")
				if err != nil {
					return nil, err
				}
				embedding, err := convert.GetVectorArg(args, "embedding")
				if err != nil {
					return nil, err
				}
				var metadata stratadb.Value
				if _, ok := args["metadata"]; ok {
					metadata, err = convert.GetValueArg(args, "metadata")
					if err != nil {
						return nil, err
					}
				}
				out, err := s.Execute(stratadb.VectorUpsert{
					Collection: collection, Key: key, Embedding: embedding, Metadata: metadata,
				})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_vector_get",
				mcp.WithDescription("Read a vector by key. Returns { key, embedding, metadata, version, timestamp } or null."),
				mcp.WithString("collection", mcp.Required()),
				mcp.WithString("key", mcp.Required()),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				collection, err := convert.GetStringArg(args, "collection")
				if err != nil {
					return nil, err
				}
				key, err := convert.GetStringArg(args, "key")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.VectorGet{Collection: collection, Key: key})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_vector_delete",
				mcp.WithDescription("Remove a vector by key. Returns true if a vector was removed."),
				mcp.WithString("collection", mcp.Required()),
				mcp.WithString("key", mcp.Required()),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				collection, err := convert.GetStringArg(args, "collection")
				if err != nil {
					return nil, err
				}
				key, err := convert.GetStringArg(args, "key")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.VectorDelete{Collection: collection, Key: key})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_vector_search",
				mcp.WithDescription("Return the k nearest vectors to a query embedding, best first. Returns an array of { key, score, metadata }."),
				mcp.WithString("collection", mcp.Required()),
				mcp.WithArray("query", mcp.Required(), mcp.Items(map[string]any{"type": "number"})),
				mcp.WithNumber("k", mcp.Description("Number of results, default 10")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				collection, err := convert.GetStringArg(args, "collection")
				if err != nil {
					return nil, err
				}
				query, err := convert.GetVectorArg(args, "query")
				if err != nil {
					return nil, err
				}
				k, err := convert.GetOptionalU64(args, "k")
				if err != nil {
					return nil, err
				}
				cmd := stratadb.VectorSearch{Collection: collection, Query: query}
				if k != nil {
					cmd.K = *k
				}
				out, err := s.Execute(cmd)
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
	}
}
