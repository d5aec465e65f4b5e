// Package domain models U.S. Department of Labor (DOL) Office of Foreign Labor
// Certification (OFLC) prevailing wage data and the query engine over it.
//
// # Data Source
//
// Prevailing wages are published yearly by the OFLC Foreign Labor Certification
// Data Center (https://flag.dol.gov/wage-data/wage-data-downloads). The export
// bundle ships an ALC (All Industries) and an EDC (ACWIA Higher Education) wage
// table keyed by OES area code and SOC occupation code, a Geography table that
// maps each area to its counties, and an occupation title table.
// Package dataset flattens that bundle into [WageRecord] rows.
//
// # OFLC Data Conventions
//
// Wage levels:
//
//	Level I    entry
//	Level II   qualified
//	Level III  experienced
//	Level IV   fully competent
//
// Units:
//
//	The export "Label" column is blank for hourly rows and "Annual Wage" for
//	rows published as annual amounts. Hourly amounts are annualized with
//	HoursPerYear (40 hours/week * 52 weeks = 2080).
//
// Regions:
//
//	A region is a two-letter state abbreviation plus an optional county or
//	town name. A state-level filter matches every county in the state.
//
// # Classification
//
// A salary is classified against the wage thresholds observed for one job
// role in one region. The result is the highest level whose threshold does
// not exceed the salary:
//
//	salary <  Level I                 Unclassified ("Below Level I")
//	Level I  <= salary < Level II     Level I
//	Level II <= salary < Level III    Level II
//	Level III <= salary < Level IV    Level III
//	salary >= Level IV                Level IV
//
// When two levels share a threshold the higher level wins. See [Classify].
package domain
