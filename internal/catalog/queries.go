package catalog

import (
	"github.com/vitebski/tyre-explorer/pkg/models"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Report names
const (
	ProductsByType         = "Products by Type"
	ProductsByBrand        = "Products by Brand"
	MissingCoreFields      = "Missing Core Fields"
	ActiveOfferPrices      = "Active Offer Prices"
	StockDistribution      = "Stock Distribution"
	TyreDimensionFrequency = "Tyre Dimension Frequency"
	TyresBySeason          = "Tyres by Season"
	EULabelClasses         = "EU Label Classes"
	PartnerPriceDelta      = "Partner Price Delta"
	ProductsRecentActivity = "Products Recent Activity"
)

// DefaultLimit is the row limit applied to the heavy queries
const DefaultLimit = 10000

// ReportNames returns the report names in default fetch order
func ReportNames() []string {
	names := make([]string, len(postgresTemplates))
	for i, t := range postgresTemplates {
		names[i] = t.name
	}
	return names
}

type template struct {
	name   string
	sql    string
	limit  bool
	tables []string
}

var postgresTemplates = []template{
	{ProductsByType, `
		SELECT product_type::text AS product_type, COUNT(*) AS cnt
		FROM product
		GROUP BY product_type
		ORDER BY cnt DESC`, false, []string{"product"}},
	{ProductsByBrand, `
		SELECT b.name AS brand, COUNT(*) AS cnt
		FROM product p
		JOIN brand b ON p.brand_id = b.id
		GROUP BY b.name
		ORDER BY cnt DESC
		LIMIT 25`, false, []string{"product", "brand"}},
	{MissingCoreFields, `
		SELECT
			COUNT(*) FILTER (WHERE main_image_url IS NULL OR main_image_url = '') AS missing_image,
			COUNT(*) FILTER (WHERE title IS NULL OR title = '') AS missing_title,
			COUNT(*) FILTER (WHERE ean IS NULL OR ean = '') AS missing_ean,
			COUNT(*) AS total
		FROM product`, false, []string{"product"}},
	{ActiveOfferPrices, `
		SELECT price_numeric::numeric AS price_numeric
		FROM offer
		WHERE is_active = true
		  AND price_numeric IS NOT NULL
		LIMIT $1`, true, []string{"offer"}},
	{StockDistribution, `
		SELECT stock
		FROM offer
		WHERE is_active = true
		LIMIT $1`, true, []string{"offer"}},
	{TyreDimensionFrequency, `
		SELECT d.width_mm, d.height_pct, d.rim_diam_in, COUNT(*) AS count
		FROM product_tyres pt
		JOIN dimension d ON pt.dimension_id = d.id
		GROUP BY d.width_mm, d.height_pct, d.rim_diam_in`, false, []string{"product_tyres", "dimension"}},
	{TyresBySeason, `
		SELECT s.name AS season, COUNT(*) AS cnt
		FROM product_tyres pt
		JOIN season s ON pt.season_id = s.id
		GROUP BY s.name
		ORDER BY cnt DESC`, false, []string{"product_tyres", "season"}},
	{EULabelClasses, `
		SELECT eff_class::text AS efficiency,
		       grip_class::text AS grip,
		       eu_noise_db
		FROM product_tyres
		WHERE eff_class IS NOT NULL
		   OR grip_class IS NOT NULL
		   OR eu_noise_db IS NOT NULL`, false, []string{"product_tyres"}},
	{PartnerPriceDelta, `
		SELECT o.price_numeric AS base_price,
		       pp.price_numeric AS partner_price,
		       (o.price_numeric - pp.price_numeric) AS diff
		FROM partner_price pp
		JOIN offer o ON o.id = pp.offer_id
		WHERE o.price_numeric IS NOT NULL
		  AND pp.price_numeric IS NOT NULL`, false, []string{"partner_price", "offer"}},
	{ProductsRecentActivity, `
		SELECT DATE_TRUNC('month', created_at) AS month,
		       COUNT(*) AS cnt
		FROM product
		GROUP BY 1
		ORDER BY 1`, false, []string{"product"}},
}

// MySQL has no FILTER clause, no :: casts and no DATE_TRUNC
var mysqlTemplates = []template{
	{ProductsByType, `
		SELECT CAST(product_type AS CHAR) AS product_type, COUNT(*) AS cnt
		FROM product
		GROUP BY product_type
		ORDER BY cnt DESC`, false, []string{"product"}},
	{ProductsByBrand, `
		SELECT b.name AS brand, COUNT(*) AS cnt
		FROM product p
		JOIN brand b ON p.brand_id = b.id
		GROUP BY b.name
		ORDER BY cnt DESC
		LIMIT 25`, false, []string{"product", "brand"}},
	{MissingCoreFields, `
		SELECT
			SUM(CASE WHEN main_image_url IS NULL OR main_image_url = '' THEN 1 ELSE 0 END) AS missing_image,
			SUM(CASE WHEN title IS NULL OR title = '' THEN 1 ELSE 0 END) AS missing_title,
			SUM(CASE WHEN ean IS NULL OR ean = '' THEN 1 ELSE 0 END) AS missing_ean,
			COUNT(*) AS total
		FROM product`, false, []string{"product"}},
	{ActiveOfferPrices, `
		SELECT price_numeric
		FROM offer
		WHERE is_active = true
		  AND price_numeric IS NOT NULL
		LIMIT ?`, true, []string{"offer"}},
	{StockDistribution, `
		SELECT stock
		FROM offer
		WHERE is_active = true
		LIMIT ?`, true, []string{"offer"}},
	{TyreDimensionFrequency, `
		SELECT d.width_mm, d.height_pct, d.rim_diam_in, COUNT(*) AS count
		FROM product_tyres pt
		JOIN dimension d ON pt.dimension_id = d.id
		GROUP BY d.width_mm, d.height_pct, d.rim_diam_in`, false, []string{"product_tyres", "dimension"}},
	{TyresBySeason, `
		SELECT s.name AS season, COUNT(*) AS cnt
		FROM product_tyres pt
		JOIN season s ON pt.season_id = s.id
		GROUP BY s.name
		ORDER BY cnt DESC`, false, []string{"product_tyres", "season"}},
	{EULabelClasses, `
		SELECT CAST(eff_class AS CHAR) AS efficiency,
		       CAST(grip_class AS CHAR) AS grip,
		       eu_noise_db
		FROM product_tyres
		WHERE eff_class IS NOT NULL
		   OR grip_class IS NOT NULL
		   OR eu_noise_db IS NOT NULL`, false, []string{"product_tyres"}},
	{PartnerPriceDelta, `
		SELECT o.price_numeric AS base_price,
		       pp.price_numeric AS partner_price,
		       (o.price_numeric - pp.price_numeric) AS diff
		FROM partner_price pp
		JOIN offer o ON o.id = pp.offer_id
		WHERE o.price_numeric IS NOT NULL
		  AND pp.price_numeric IS NOT NULL`, false, []string{"partner_price", "offer"}},
	{ProductsRecentActivity, `
		SELECT CAST(DATE_FORMAT(created_at, '%Y-%m-01') AS DATE) AS month,
		       COUNT(*) AS cnt
		FROM product
		GROUP BY 1
		ORDER BY 1`, false, []string{"product"}},
}

// BuildQueries returns the report catalog for a driver with the row limit bound
// to the heavy queries. Unknown drivers get the postgres catalog.
func BuildQueries(limit int, driver string) []models.Query {
	templates := postgresTemplates
	if driver == DriverMySQL {
		templates = mysqlTemplates
	}

	queries := make([]models.Query, 0, len(templates))
	for _, t := range templates {
		q := models.Query{
			Name:   t.name,
			SQL:    t.sql,
			Tables: append([]string(nil), t.tables...),
		}
		if t.limit {
			q.Args = []interface{}{limit}
		}
		queries = append(queries, q)
	}
	return queries
}
