package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/board"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func cardHeader(tw *tabwriter.Writer) {
	fmt.Fprintln(tw, "ID\tTITLE\tVALUE\tPRIORITY\tPROGRESS\tSTATUS\tCONTACT\tOWNER\tACCESS")
}

func cardRow(tw *tabwriter.Writer, c board.Card) {
	o := c.Opportunity
	fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d%%\t%s\t%s\t%s\t%s\n",
		o.ID, o.Title, money(o.Value), o.Priority, o.Progress, o.Status(),
		orDash(c.ContactName), orDash(c.OwnerName), c.Controls.Edit)
}

// renderBoard prints every stage column, or only the sorted active tab.
func renderBoard(w io.Writer, v board.View, tabOnly bool) error {
	fmt.Fprintf(w, "Signed in as %s (#%d)\n", orDash(v.User.Username), v.User.ID)

	if tabOnly {
		fmt.Fprintf(w, "\n%s", v.ActiveTab.Label())
		if v.Sort.Key != "" {
			dir := "desc"
			if v.Sort.Ascending {
				dir = "asc"
			}
			fmt.Fprintf(w, " sorted by %s %s", v.Sort.Key, dir)
		}
		fmt.Fprintln(w)
		tw := newTable(w)
		cardHeader(tw)
		for _, c := range v.TabRows {
			cardRow(tw, c)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	} else {
		for _, col := range v.Columns {
			fmt.Fprintf(w, "\n%s (%d, %s %s)\n", col.Label, col.Count, money(col.TotalValue), v.Currency)
			if len(col.Cards) == 0 {
				fmt.Fprintln(w, "  no opportunities")
				continue
			}
			tw := newTable(w)
			cardHeader(tw)
			for _, c := range col.Cards {
				cardRow(tw, c)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
	}

	renderBanners(w, v.Banners)
	return nil
}

func renderCard(w io.Writer, c board.Card) error {
	tw := newTable(w)
	cardHeader(tw)
	cardRow(tw, c)
	return tw.Flush()
}

func renderBanners(w io.Writer, banners []board.Banner) {
	for _, b := range banners {
		fmt.Fprintf(w, "[%s] %s\n", b.Kind, b.Message)
	}
}

func renderTasks(w io.Writer, tasks []domain.Task) error {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks for this opportunity.")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tPRIORITY\tSTATUS\tASSIGNEE\tDONE")
	for _, t := range tasks {
		assignee := "-"
		if t.Assignee != nil {
			assignee = orDash(t.Assignee.Username)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%t\n",
			t.ID, t.Title, orDash(t.Type), orDash(t.Priority), orDash(t.Status), assignee, t.IsCompleted())
	}
	return tw.Flush()
}

func renderContacts(w io.Writer, contacts []domain.Contact) error {
	if len(contacts) == 0 {
		fmt.Fprintln(w, "No contacts found.")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCOMPANY")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.DisplayName(), orDash(c.CompanyName()))
	}
	return tw.Flush()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
