// cmd/shelfwise/lending.go
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
	"github.com/vasujain275/shelfwise-sub000/internal/workflow"
)

func newIssueCmd(a *app) *cobra.Command {
	var bookID, userID, issueDate, dueDate, notes string
	var yes bool

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a book to a borrower",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLending(cmd); err != nil {
				return err
			}
			if bookID == "" || userID == "" {
				return fmt.Errorf("both --book and --user are required")
			}

			ctx := cmd.Context()
			book, err := a.client.GetBook(ctx, bookID)
			if err != nil {
				return fmt.Errorf("failed to look up book: %s", api.UserMessage(err))
			}
			user, err := a.client.GetUser(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to look up user: %s", api.UserMessage(err))
			}

			wf := workflow.New(workflow.KindIssue, a.client)
			if err := wf.SelectBook(*book); err != nil {
				return err
			}
			if err := wf.SelectUser(ctx, *user); err != nil {
				return err
			}
			if issueDate != "" {
				d, err := time.Parse(api.WireDate, issueDate)
				if err != nil {
					return fmt.Errorf("--issue-date must be yyyy-MM-dd")
				}
				if err := wf.SetIssueDate(d); err != nil {
					return err
				}
			}
			if dueDate != "" {
				d, err := time.Parse(api.WireDate, dueDate)
				if err != nil {
					return fmt.Errorf("--due must be yyyy-MM-dd")
				}
				if err := wf.SetDueDate(d); err != nil {
					return err
				}
			}
			wf.SetNotes(notes)

			return confirmAndSubmit(ctx, wf, yes)
		},
	}
	cmd.Flags().StringVar(&bookID, "book", "", "book id (find it with `shelfwise search books`)")
	cmd.Flags().StringVar(&userID, "user", "", "borrower user id")
	cmd.Flags().StringVar(&issueDate, "issue-date", "", "issue date, yyyy-MM-dd (defaults to today)")
	cmd.Flags().StringVar(&dueDate, "due", "", "due date, yyyy-MM-dd (defaults to 30 days out)")
	cmd.Flags().StringVar(&notes, "notes", "", "transaction notes")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newReturnCmd(a *app) *cobra.Command {
	var txnID, notes string
	var yes bool

	cmd := &cobra.Command{
		Use:   "return",
		Short: "Record the return of an issued book",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLending(cmd); err != nil {
				return err
			}
			if txnID == "" {
				return fmt.Errorf("--transaction is required")
			}

			ctx := cmd.Context()
			txn, err := a.client.GetTransaction(ctx, txnID)
			if err != nil {
				return fmt.Errorf("failed to look up transaction: %s", api.UserMessage(err))
			}

			wf := workflow.New(workflow.KindReturn, a.client)
			if err := wf.SelectTransaction(*txn); err != nil {
				return err
			}
			wf.SetNotes(notes)

			return confirmAndSubmit(ctx, wf, yes)
		},
	}
	cmd.Flags().StringVar(&txnID, "transaction", "", "transaction id")
	cmd.Flags().StringVar(&notes, "notes", "", "transaction notes")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newRenewCmd(a *app) *cobra.Command {
	var txnID, newDue, notes string
	var yes bool

	cmd := &cobra.Command{
		Use:   "renew",
		Short: "Extend the due date of an open loan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLending(cmd); err != nil {
				return err
			}
			if txnID == "" {
				return fmt.Errorf("--transaction is required")
			}

			ctx := cmd.Context()
			txn, err := a.client.GetTransaction(ctx, txnID)
			if err != nil {
				return fmt.Errorf("failed to look up transaction: %s", api.UserMessage(err))
			}

			wf := workflow.New(workflow.KindRenew, a.client)
			if err := wf.SelectTransaction(*txn); err != nil {
				return err
			}
			if newDue != "" {
				d, err := time.Parse(api.WireDate, newDue)
				if err != nil {
					return fmt.Errorf("--due must be yyyy-MM-dd")
				}
				if err := wf.SetNewDueDate(d); err != nil {
					return err
				}
			}
			wf.SetNotes(notes)

			return confirmAndSubmit(ctx, wf, yes)
		},
	}
	cmd.Flags().StringVar(&txnID, "transaction", "", "transaction id")
	cmd.Flags().StringVar(&newDue, "due", "", "new due date, yyyy-MM-dd (defaults to 30 days past the current one)")
	cmd.Flags().StringVar(&notes, "notes", "", "transaction notes")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirmAndSubmit walks the workflow through the confirmation gate:
// show the frozen summary, ask, and submit exactly once on approval.
func confirmAndSubmit(ctx context.Context, wf *workflow.Workflow, yes bool) error {
	summary, err := wf.BeginConfirm()
	if err != nil {
		return err
	}
	printSummary(summary)

	if !yes {
		answer, err := readLine("Proceed? [y/N] ")
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			if err := wf.Cancel(); err != nil {
				return err
			}
			fmt.Println("Cancelled. Nothing was submitted.")
			return nil
		}
	}

	txn, err := wf.Submit(ctx)
	if err != nil {
		return fmt.Errorf("%s", wf.FailureMessage())
	}

	fmt.Printf("Done. Transaction %s is %s", txn.ID, txn.Status)
	if txn.DueDate != "" && summary.Kind != workflow.KindReturn {
		fmt.Printf(", due %s", txn.DueDate)
	}
	fmt.Println(".")
	if summary.Kind == workflow.KindRenew {
		fmt.Printf("Renewal count: %d\n", txn.RenewalCount)
	}
	return nil
}

func printSummary(s workflow.Summary) {
	fmt.Printf("\n%s\n", strings.ToUpper(string(s.Kind)))
	if s.BookTitle != "" {
		fmt.Printf("  Book:      %s", s.BookTitle)
		if s.AccessionNumber != "" {
			fmt.Printf(" (%s)", s.AccessionNumber)
		}
		fmt.Println()
	}
	if s.UserFullName != "" {
		fmt.Printf("  Borrower:  %s", s.UserFullName)
		if s.EmployeeID != "" {
			fmt.Printf(" (%s)", s.EmployeeID)
		}
		fmt.Println()
	}
	if !s.IssueDate.IsZero() {
		fmt.Printf("  Issued:    %s\n", api.FormatDisplay(s.IssueDate))
	}
	if !s.DueDate.IsZero() {
		fmt.Printf("  Due:       %s\n", api.FormatDisplay(s.DueDate))
	}
	if !s.NewDueDate.IsZero() {
		fmt.Printf("  New due:   %s\n", api.FormatDisplay(s.NewDueDate))
	}
	if s.Notes != "" {
		fmt.Printf("  Notes:     %s\n", s.Notes)
	}
	fmt.Println()
}
