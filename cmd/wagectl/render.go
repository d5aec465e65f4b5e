package main

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/h1b-wage-explorer/internal/dashboard"
	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

// colorLevel shades a wage level from red (below Level I) to green (Level IV).
func colorLevel(l domain.WageLevel) string {
	switch l {
	case domain.LevelIV:
		return pterm.Green(l.String())
	case domain.LevelIII:
		return pterm.LightGreen(l.String())
	case domain.LevelII:
		return pterm.Yellow(l.String())
	case domain.LevelI:
		return pterm.LightRed(l.String())
	default:
		return pterm.Red(l.String())
	}
}

func formatStat(stats domain.AggregateResult, v float64) string {
	if !stats.Defined() {
		return "-"
	}
	return domain.FormatAnnual(v)
}

func renderTable(data pterm.TableData) string {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Sprintf("render table: %v\n", err)
	}
	return out + "\n"
}

func section(title string) string {
	return pterm.DefaultSection.Sprint(title)
}

func renderDataset(info dashboard.DatasetInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s records, %s job roles, %s states",
		info.Source,
		humanize.Comma(int64(info.Records)),
		humanize.Comma(int64(info.JobRoles)),
		humanize.Comma(int64(info.States)),
	)
	if info.Duplicates > 0 {
		fmt.Fprintf(&b, ", duplicates discarded: %s", humanize.Comma(int64(info.Duplicates)))
	}
	b.WriteString("\n")
	return b.String()
}

func renderList(title string, items []string) string {
	var b strings.Builder
	b.WriteString(section(title))
	for _, item := range items {
		b.WriteString(item + "\n")
	}
	return b.String()
}

func renderWages(view dashboard.WageView) string {
	var b strings.Builder

	b.WriteString(section("Summary"))
	b.WriteString(renderTable(pterm.TableData{
		{"Records", "Mean", "Median", "Min", "Max"},
		{
			humanize.Comma(int64(view.Stats.Count)),
			formatStat(view.Stats, view.Stats.Mean),
			formatStat(view.Stats, view.Stats.Median),
			formatStat(view.Stats, view.Stats.Min),
			formatStat(view.Stats, view.Stats.Max),
		},
	}))

	if len(view.Rows) > 0 {
		b.WriteString(section("Wages"))
		rows := pterm.TableData{{"Job Role", "Level", "State", "County", "Annual", "Hourly"}}
		for _, row := range view.Rows {
			rows = append(rows, []string{
				row.JobRole,
				colorLevel(row.WageLevel),
				row.Region.State,
				row.Region.County,
				domain.FormatAnnual(row.AnnualWage),
				domain.FormatHourly(row.AnnualWage),
			})
		}
		b.WriteString(renderTable(rows))
		if view.Truncated {
			fmt.Fprintf(&b, "showing %d of %s records\n", len(view.Rows), humanize.Comma(int64(view.Total)))
		}
	}

	if len(view.States) > 0 {
		b.WriteString(section("By State"))
		rows := pterm.TableData{{"State", "Records", "Mean", "Median"}}
		for _, s := range view.States {
			rows = append(rows, []string{
				s.State,
				humanize.Comma(int64(s.Stats.Count)),
				formatStat(s.Stats, s.Stats.Mean),
				formatStat(s.Stats, s.Stats.Median),
			})
		}
		b.WriteString(renderTable(rows))
	}

	if len(view.Counties) > 0 {
		b.WriteString(section("By County"))
		rows := pterm.TableData{{"State", "County", "Records", "Mean", "Median"}}
		for _, c := range view.Counties {
			rows = append(rows, []string{
				c.State,
				c.County,
				humanize.Comma(int64(c.Stats.Count)),
				formatStat(c.Stats, c.Stats.Mean),
				formatStat(c.Stats, c.Stats.Median),
			})
		}
		b.WriteString(renderTable(rows))
	}
	return b.String()
}

func renderClassification(view dashboard.ClassificationView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Salary %s\n", domain.FormatWage(view.AnnualSalary))

	b.WriteString(section("Distribution"))
	dist := pterm.TableData{{"Level", "Regions", "Share"}}
	for _, share := range view.Distribution {
		dist = append(dist, []string{
			colorLevel(share.Level),
			humanize.Comma(int64(share.Count)),
			fmt.Sprintf("%.1f%%", share.Percent),
		})
	}
	b.WriteString(renderTable(dist))

	if len(view.Regions) > 0 {
		b.WriteString(section("Regions"))
		rows := pterm.TableData{{"Job Role", "State", "County", "Level", "Next Level"}}
		for _, r := range view.Regions {
			rows = append(rows, []string{
				r.JobRole,
				r.Region.State,
				r.Region.County,
				colorLevel(r.Level),
				nextThreshold(r),
			})
		}
		b.WriteString(renderTable(rows))
		if view.Truncated {
			fmt.Fprintf(&b, "showing %d of %s regions\n", len(view.Regions), humanize.Comma(int64(view.Total)))
		}
	}

	if len(view.States) > 0 {
		b.WriteString(section("Most Common Level by State"))
		rows := pterm.TableData{{"State", "Level", "Regions"}}
		for _, s := range view.States {
			rows = append(rows, []string{s.State, colorLevel(s.Level), humanize.Comma(int64(s.Regions))})
		}
		b.WriteString(renderTable(rows))
	}
	return b.String()
}

// nextThreshold names the lowest level above r.Level that has a known
// threshold, e.g. "Level III at $164,000".
func nextThreshold(r domain.RegionClassification) string {
	for _, level := range domain.Levels {
		if level <= r.Level {
			continue
		}
		if t, ok := r.Thresholds[level]; ok {
			return fmt.Sprintf("%s at %s", level, domain.FormatAnnual(t))
		}
	}
	return "-"
}
