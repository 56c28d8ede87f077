package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lukman83/trustrank/internal/models"
	"github.com/lukman83/trustrank/internal/platform"
)

func registerTools(s *server.MCPServer, ranker Ranker) {
	// rank_items
	rankTool := mcp.NewTool("rank_items",
		mcp.WithDescription("Search a keyword on the marketplace and rank well-rated items by shop and reviewer trust"),
		mcp.WithString("keyword",
			mcp.Required(),
			mcp.Description("Search keyword"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Return only the top N ranked items (default: all)"),
		),
	)
	s.AddTool(rankTool, rankItemsHandler(ranker))

	// list_marketplaces
	listTool := mcp.NewTool("list_marketplaces",
		mcp.WithDescription("List the marketplaces this server can rank"),
	)
	s.AddTool(listTool, handleListMarketplaces)
}

// rankedItem is the tool-facing view of a ranked item.
type rankedItem struct {
	Rank       int                   `json:"rank"`
	ItemID     int64                 `json:"itemid"`
	ShopID     int64                 `json:"shopid"`
	Name       string                `json:"name"`
	Price      int64                 `json:"price"`
	RatingStar float64               `json:"rating_star"`
	Score      models.ScoreBreakdown `json:"score"`
	Enrichment models.Enrichment     `json:"enrichment"`
}

func rankItemsHandler(ranker Ranker) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword := request.GetString("keyword", "")
		if keyword == "" {
			return mcp.NewToolResultError("keyword is required"), nil
		}
		limit := request.GetInt("limit", 0)
		if limit < 0 {
			return mcp.NewToolResultError("limit must not be negative"), nil
		}

		items, err := ranker.Run(ctx, keyword)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rank error: %v", err)), nil
		}

		out := make([]rankedItem, 0, len(items))
		for i, it := range items {
			if limit > 0 && len(out) == limit {
				break
			}
			if it.Score == nil {
				continue
			}
			out = append(out, rankedItem{
				Rank:       i + 1,
				ItemID:     it.ItemID,
				ShopID:     it.ShopID,
				Name:       it.Name,
				Price:      it.Price,
				RatingStar: it.RatingStar,
				Score:      *it.Score,
				Enrichment: it.Enrichment,
			})
		}

		data, _ := json.MarshalIndent(out, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleListMarketplaces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, _ := json.Marshal(platform.List())
	return mcp.NewToolResultText(string(data)), nil
}
