// Command cli is a terminal client for a LinkBoard server: it signs in,
// fetches the bookmark store, and renders a filtered, sorted, date-grouped
// view.
package main

import (
	"LinkBoard-Backend/internal/client"
	"LinkBoard-Backend/internal/query"
	"LinkBoard-Backend/pkg/logger"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

func main() {
	server := flag.String("server", "http://localhost:8081", "backend base URL")
	username := flag.String("username", "", "username (empty for the public view)")
	password := flag.String("password", "", "password")
	search := flag.String("search", "", "substring filter over url, description, and tags")
	privacy := flag.String("privacy", "all", "privacy filter: all, public, private, favorites")
	category := flag.String("category", "all", "category filter (exact match, 'uncategorized' for none)")
	sortMode := flag.String("sort", "date-desc", "sort: date-desc, date-asc, alphabetical, access-desc, category")
	env := flag.String("env", "production", "logging environment")
	flag.Parse()

	log := logger.New(*env)
	defer func() { _ = log.Sync() }()

	c := client.New(*server, log)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var store query.Store
	if *username != "" {
		if err := c.Login(ctx, *username, *password); err != nil {
			fatal("login failed: %v", err)
		}
		if err := c.FetchLinks(ctx); err != nil {
			fatal("failed to fetch links: %v", err)
		}
		store = c.Store()
	} else {
		public, err := c.FetchPublicLinks(ctx)
		if err != nil {
			fatal("failed to fetch public links: %v", err)
		}
		store = public
	}

	criteria := query.Criteria{
		Search:   *search,
		Privacy:  query.PrivacyFilter(*privacy),
		Category: *category,
		Sort:     query.SortMode(*sortMode),
	}
	view := query.ComputeView(store, criteria)

	if view.Total == 0 {
		fmt.Println("no links match")
		return
	}

	for _, date := range view.Dates {
		fmt.Printf("%s\n", date)
		for _, link := range view.Groups[date] {
			renderLink(link.URL, deref(link.Description), deref(link.Tags), link.EffectiveCategory(), link.IsPrivate, link.IsFavorite, link.AccessCount)
		}
		fmt.Println()
	}
	fmt.Printf("%d link(s)\n", view.Total)

	if categories := store.Categories(); len(categories) > 0 {
		fmt.Printf("categories: %s\n", strings.Join(categories, ", "))
	}
}

func renderLink(url, description, tags, category string, private, favorite bool, accessCount int64) {
	marker := " "
	if favorite {
		marker = "*"
	}
	visibility := "public"
	if private {
		visibility = "private"
	}

	fmt.Printf("  %s %s [%s, %s, %d opens]\n", marker, url, category, visibility, accessCount)
	if description != "" {
		fmt.Printf("      %s\n", description)
	}
	if tags != "" {
		fmt.Printf("      tags: %s\n", tags)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
