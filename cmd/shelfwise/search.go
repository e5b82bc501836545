// cmd/shelfwise/search.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
	"github.com/vasujain275/shelfwise-sub000/internal/pagination"
	"github.com/vasujain275/shelfwise-sub000/internal/search"
)

func newSearchCmd(a *app) *cobra.Command {
	var page int
	var all bool

	cmd := &cobra.Command{
		Use:   "search {books|users|transactions} <query>",
		Short: "Search the catalog, user accounts, or lending transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Initialize(cmd.Context()); err != nil {
				return err
			}

			var kind search.Kind
			switch args[0] {
			case "books":
				kind = search.KindBook
			case "users":
				kind = search.KindUser
			case "transactions":
				kind = search.KindTransaction
			default:
				return fmt.Errorf("unknown search target %q", args[0])
			}

			query := strings.Join(args[1:], " ")
			cfg := searchConfig(kind, a.cfg.SearchPageSize, a.cfg.SearchDebounce, all)
			results, errMsg := runSearch(a.client, cfg, query, page)
			if errMsg != "" {
				return fmt.Errorf("%s", errMsg)
			}
			printResults(results)
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 0, "zero-based result page")
	cmd.Flags().BoolVar(&all, "all", false, "include non-issuable books, inactive users, and closed transactions")
	return cmd
}

// reportSearchMinLength matches the console's search screens, which
// only issue a query once two characters are typed.
const reportSearchMinLength = 2

// searchConfig assembles the provider configuration the search command
// runs with.
func searchConfig(kind search.Kind, pageSize int, debounce time.Duration, all bool) search.Config {
	cfg := search.Config{
		Kind:      kind,
		PageSize:  pageSize,
		Debounce:  debounce,
		MinLength: reportSearchMinLength,
	}
	if !all {
		switch kind {
		case search.KindBook:
			cfg.Filter = search.IssuableBooks
		case search.KindUser:
			cfg.Filter = search.ActiveUsers
		case search.KindTransaction:
			cfg.Filter = search.OpenTransactions
		}
	}
	return cfg
}

// runSearch drives one query through the shared search provider and
// blocks until its delivery callback fires.
func runSearch(backend search.Backend, cfg search.Config, query string, page int) (search.Results, string) {
	type outcome struct {
		results search.Results
		errMsg  string
	}
	done := make(chan outcome, 1)

	cfg.OnResults = func(r search.Results) {
		select {
		case done <- outcome{results: r}:
		default:
		}
	}
	cfg.OnError = func(msg string) {
		select {
		case done <- outcome{errMsg: msg}:
		default:
		}
	}

	provider := search.New(backend, cfg)
	defer provider.Close()

	provider.SetQuery(query)
	if page > 0 {
		// Wait for the first page, then jump.
		out := <-done
		if out.errMsg != "" {
			return search.Results{}, out.errMsg
		}
		provider.SetPage(page)
	}

	out := <-done
	return out.results, out.errMsg
}

func printResults(r search.Results) {
	switch {
	case r.Books != nil:
		for _, b := range r.Books {
			fmt.Printf("%-36s  %-12s  %-8s  %s by %s\n", b.ID, b.AccessionNumber, b.BookStatus, b.Title, b.AuthorPrimary)
		}
		if len(r.Books) == 0 {
			fmt.Println("No books found.")
		}
	case r.Users != nil:
		for _, u := range r.Users {
			fmt.Printf("%-36s  %-10s  %-10s  %s <%s>\n", u.ID, u.EmployeeID, u.UserStatus, u.FullName, u.Email)
		}
		if len(r.Users) == 0 {
			fmt.Println("No users found.")
		}
	case r.Transactions != nil:
		for _, t := range r.Transactions {
			fmt.Printf("%-36s  %-9s  due %s  %s / %s\n", t.ID, t.Status, t.DueDate, t.BookTitle, t.UserFullName)
		}
		if len(r.Transactions) == 0 {
			fmt.Println("No transactions found.")
		}
	default:
		fmt.Println("No results.")
	}

	if p := r.Pagination; p != nil && p.TotalPages > 1 {
		fmt.Printf("\nPage %d of %d (%d total)   %s\n",
			p.CurrentPage+1, p.TotalPages, p.TotalElements, pageStrip(p.CurrentPage, p.TotalPages))
	}
}

// pageStrip renders the windowed page numbers, e.g. "1 … 4 [5] 6 … 12".
func pageStrip(current, total int) string {
	var parts []string
	for _, item := range pagination.Window(current, total, pagination.DefaultRadius) {
		switch {
		case item == pagination.Ellipsis:
			parts = append(parts, "…")
		case int(item) == current:
			parts = append(parts, fmt.Sprintf("[%d]", int(item)+1))
		default:
			parts = append(parts, fmt.Sprintf("%d", int(item)+1))
		}
	}
	return strings.Join(parts, " ")
}

var _ search.Backend = (*api.Client)(nil)
