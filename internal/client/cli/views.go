package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vedantshetti/infyair-frontend/internal/client/models"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("105"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const productsPageSize = 10

// viewDashboard renders the landing view. Viewers see category and region
// breakdowns; admins additionally see the state distribution and totals.
func (a *App) viewDashboard(ctx context.Context, _ []string) error {
	products, err := a.catalog.Products(ctx)
	if err != nil {
		return a.renderError("Failed to load products", err)
	}
	geo, err := a.catalog.Geography(ctx)
	if err != nil {
		return a.renderError("Failed to load geography", err)
	}

	fmt.Fprintln(a.out, titleStyle.Render("Dashboard"))
	fmt.Fprintln(a.out, renderBreakdown("Product Categories", countProducts(products, func(p models.Product) string { return p.Category })))
	fmt.Fprintln(a.out, renderBreakdown("Geographic Regions", countGeo(geo, func(g models.GeoRecord) string { return g.Region })))

	if a.session.IsAdmin() {
		states := countGeo(geo, func(g models.GeoRecord) string { return g.State })
		fmt.Fprintln(a.out, renderBreakdown("Top 10 States by Data Count", top(states, 10)))
		fmt.Fprintf(a.out, "%s %d products, %d geography records\n",
			headerStyle.Render("Totals:"), len(products), len(geo))
	}
	return nil
}

// viewProducts renders the product table with an optional substring filter
// and fixed-size paging: products [term] [page].
func (a *App) viewProducts(ctx context.Context, args []string) error {
	products, err := a.catalog.Products(ctx)
	if err != nil {
		return a.renderError("Failed to load products", err)
	}

	term := ""
	page := 1
	if len(args) > 0 {
		if n, convErr := strconv.Atoi(args[len(args)-1]); convErr == nil {
			page = n
			args = args[:len(args)-1]
		}
		term = strings.ToLower(strings.Join(args, " "))
	}
	if page < 1 {
		page = 1
	}

	filtered := products
	if term != "" {
		filtered = filtered[:0:0]
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.ProductName), term) ||
				strings.Contains(strings.ToLower(p.Category), term) {
				filtered = append(filtered, p)
			}
		}
	}

	if len(filtered) == 0 {
		fmt.Fprintln(a.out, titleStyle.Render("Products"))
		fmt.Fprintln(a.out, noteStyle.Render("No products match."))
		return nil
	}

	start := (page - 1) * productsPageSize
	if start >= len(filtered) {
		start = 0
		page = 1
	}
	end := start + productsPageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	fmt.Fprintln(a.out, titleStyle.Render("Products"))
	fmt.Fprintln(a.out, headerStyle.Render(fmt.Sprintf("%-12s %-40s %-16s %-16s", "ID", "NAME", "CATEGORY", "SUB-CATEGORY")))
	for _, p := range filtered[start:end] {
		fmt.Fprintf(a.out, "%-12s %-40s %-16s %-16s\n", p.ProductID, clip(p.ProductName, 40), p.Category, p.SubCategory)
	}
	fmt.Fprintln(a.out, noteStyle.Render(fmt.Sprintf("Showing %d-%d of %d. Use 'products [term] [page]' to filter and page.",
		start+1, end, len(filtered))))
	return nil
}

// viewProductDetail renders a single product card: product <id>.
func (a *App) viewProductDetail(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: product <id>")
		return nil
	}

	p, err := a.catalog.ProductByID(ctx, args[0])
	if err != nil {
		return a.renderError("Failed to load product", err)
	}

	fmt.Fprintln(a.out, titleStyle.Render(p.ProductName))
	fmt.Fprintf(a.out, "%s %s\n", headerStyle.Render("ID:"), p.ProductID)
	fmt.Fprintf(a.out, "%s %s\n", headerStyle.Render("Category:"), p.Category)
	fmt.Fprintf(a.out, "%s %s\n", headerStyle.Render("Sub-category:"), p.SubCategory)
	return nil
}

// viewGeography renders region groups with state and city counts.
func (a *App) viewGeography(ctx context.Context, _ []string) error {
	geo, err := a.catalog.Geography(ctx)
	if err != nil {
		return a.renderError("Failed to load geography", err)
	}

	byRegion := make(map[string][]models.GeoRecord)
	for _, g := range geo {
		byRegion[g.Region] = append(byRegion[g.Region], g)
	}
	regions := make([]string, 0, len(byRegion))
	for r := range byRegion {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	fmt.Fprintln(a.out, titleStyle.Render("Geography"))
	for _, r := range regions {
		records := byRegion[r]
		states := make(map[string]struct{})
		cities := make(map[string]struct{})
		for _, g := range records {
			states[g.State] = struct{}{}
			cities[g.City] = struct{}{}
		}
		fmt.Fprintf(a.out, "%s %d records, %d states, %d cities\n",
			headerStyle.Render(r+":"), len(records), len(states), len(cities))
	}
	return nil
}

// viewAdmin renders the admin dashboard variant plus session details.
func (a *App) viewAdmin(ctx context.Context, args []string) error {
	fmt.Fprintln(a.out, titleStyle.Render("Admin"))
	s := a.session.Snapshot()
	if s.User != nil {
		fmt.Fprintf(a.out, "%s %s (%s), session expires at %s\n",
			headerStyle.Render("Session:"), s.User.Username, s.User.Role,
			s.ExpiresAt.Local().Format("15:04:05"))
	}
	return a.viewDashboard(ctx, args)
}

func (a *App) renderError(msg string, err error) error {
	fmt.Fprintln(a.out, errorStyle.Render(msg+": "+err.Error()))
	return nil
}

type countRow struct {
	Label string
	Count int
}

func countProducts(products []models.Product, field func(models.Product) string) []countRow {
	counts := make(map[string]int)
	for _, p := range products {
		counts[field(p)]++
	}
	return sortedRows(counts)
}

func countGeo(records []models.GeoRecord, field func(models.GeoRecord) string) []countRow {
	counts := make(map[string]int)
	for _, g := range records {
		counts[field(g)]++
	}
	return sortedRows(counts)
}

// sortedRows orders by count descending, label ascending on ties.
func sortedRows(counts map[string]int) []countRow {
	rows := make([]countRow, 0, len(counts))
	for label, count := range counts {
		rows = append(rows, countRow{Label: label, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

func top(rows []countRow, n int) []countRow {
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// renderBreakdown draws a labelled bar per row, scaled to the largest count.
func renderBreakdown(title string, rows []countRow) string {
	const maxBar = 30

	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	if len(rows) == 0 {
		b.WriteString(noteStyle.Render("no data"))
		return b.String()
	}

	scale := rows[0].Count
	for _, row := range rows {
		width := row.Count * maxBar / scale
		if width < 1 {
			width = 1
		}
		fmt.Fprintf(&b, "%-20s %s %d\n", clip(row.Label, 20), barStyle.Render(strings.Repeat("█", width)), row.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

// clip shortens s to max runes, not bytes, so multi-byte names are never
// cut mid-rune.
func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
