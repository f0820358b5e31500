package catalog

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anavsan/anavsan/console/internal/team"
)

// CreditPrice is the on-demand price of one Snowflake credit.
var CreditPrice = decimal.NewFromInt(3)

// Epoch is the reference "now" of the dataset.
var Epoch = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func day(offset int) time.Time { return Epoch.AddDate(0, 0, offset) }

func cost(credits float64) decimal.Decimal {
	return decimal.NewFromFloat(credits).Mul(CreditPrice).Round(2)
}

const gib = int64(1) << 30

// Load builds the dataset.
func Load() *Dataset {
	d := &Dataset{
		Accounts:        accounts(),
		Warehouses:      warehouses(),
		Storage:         storage(),
		Invoices:        invoices(),
		Recommendations: recommendations(),
		Notifications:   notifications(),
		Members:         members(),
	}
	d.Queries = queries(d.Warehouses)
	return d
}

func accounts() []Account {
	return []Account{
		{ID: "acme-prod", Name: "ACME_PROD", Region: "us-east-1", Cloud: "AWS", Edition: "Enterprise", Credits: 1842.5, Spend: cost(1842.5), Warehouses: 4},
		{ID: "acme-analytics", Name: "ACME_ANALYTICS", Region: "eu-west-1", Cloud: "AWS", Edition: "Business Critical", Credits: 963.25, Spend: cost(963.25), Warehouses: 3},
		{ID: "acme-dev", Name: "ACME_DEV", Region: "westus2", Cloud: "Azure", Edition: "Standard", Credits: 121.75, Spend: cost(121.75), Warehouses: 1},
	}
}

func warehouses() []Warehouse {
	w := func(name, acct, size, state string, credits float64, queries, suspendSec int, owner string, created int) Warehouse {
		return Warehouse{
			Name: name, Account: acct, Size: size, State: state,
			Credits: credits, Cost: cost(credits), Queries: queries,
			AutoSuspend: time.Duration(suspendSec) * time.Second,
			Owner:       owner, CreatedAt: day(-created),
		}
	}
	return []Warehouse{
		w("ETL_WH", "ACME_PROD", "X-Large", "running", 912.0, 4120, 600, "data-eng", 540),
		w("TRANSFORM_WH", "ACME_PROD", "Large", "running", 486.5, 2875, 300, "data-eng", 410),
		w("BI_WH", "ACME_PROD", "Medium", "suspended", 301.0, 9630, 60, "analytics", 380),
		w("REPORTING_WH", "ACME_PROD", "Small", "suspended", 143.0, 1544, 60, "finance", 200),
		w("ANALYTICS_WH", "ACME_ANALYTICS", "Large", "running", 522.75, 3310, 900, "analytics", 300),
		w("DS_WH", "ACME_ANALYTICS", "X-Large", "suspended", 318.0, 402, 300, "data-science", 150),
		w("ADHOC_WH", "ACME_ANALYTICS", "X-Small", "suspended", 122.5, 2210, 60, "analytics", 90),
		w("DEV_WH", "ACME_DEV", "X-Small", "suspended", 121.75, 1688, 60, "platform", 60),
	}
}

var queryTemplates = []struct {
	text, user string
	secs       int
	credits    float64
	gb         int64
}{
	{"SELECT * FROM RAW.EVENTS WHERE EVENT_DATE >= DATEADD(day, -30, CURRENT_DATE())", "etl_service", 412, 3.4, 820},
	{"INSERT INTO MART.DAILY_REVENUE SELECT ORDER_DATE, SUM(TOTAL) FROM CORE.ORDERS GROUP BY 1", "etl_service", 188, 1.6, 210},
	{"SELECT C.REGION, COUNT(*) FROM CORE.CUSTOMERS C JOIN CORE.ORDERS O ON O.CUSTOMER_ID = C.ID GROUP BY 1", "maria.lopez", 36, 0.21, 48},
	{"MERGE INTO CORE.CUSTOMERS T USING STAGING.CUSTOMERS S ON T.ID = S.ID WHEN MATCHED THEN UPDATE SET T.EMAIL = S.EMAIL", "etl_service", 264, 2.1, 160},
	{"SELECT DISTINCT USER_ID FROM RAW.PAGE_VIEWS", "dev.kim", 97, 0.9, 390},
	{"CREATE OR REPLACE TABLE DS.FEATURES AS SELECT * FROM CORE.ORDERS O JOIN CORE.CUSTOMERS C ON O.CUSTOMER_ID = C.ID", "ds_pipeline", 951, 7.8, 1100},
	{"SELECT * FROM FINANCE.LEDGER ORDER BY POSTED_AT DESC", "finance_bot", 58, 0.35, 75},
	{"DELETE FROM STAGING.EVENTS WHERE LOADED_AT < DATEADD(day, -7, CURRENT_DATE())", "etl_service", 21, 0.12, 30},
}

func queries(whs []Warehouse) []Query {
	statuses := []string{"success", "success", "success", "failed", "success", "running", "success"}
	var out []Query
	for i := range 42 {
		t := queryTemplates[i%len(queryTemplates)]
		wh := whs[(i*3)%len(whs)]
		credits := t.credits * (1 + float64(i%5)/10)
		out = append(out, Query{
			ID:           fmt.Sprintf("01b4%04x-0000-7c21-0000-%04d", 0x3a10+i*7, 1000+i),
			Text:         t.text,
			User:         t.user,
			Warehouse:    wh.Name,
			Status:       statuses[i%len(statuses)],
			Duration:     time.Duration(t.secs+(i*13)%60) * time.Second,
			Credits:      credits,
			Cost:         cost(credits),
			BytesScanned: t.gb * gib,
			StartedAt:    Epoch.Add(-time.Duration(i*97) * time.Minute),
		})
	}
	return out
}

func storage() []StorageItem {
	s := func(db, schema, table string, activeGB, ttGB, fsGB int64, accessed int) StorageItem {
		total := decimal.NewFromInt(activeGB + ttGB + fsGB)
		return StorageItem{
			Database: db, Schema: schema, Table: table,
			ActiveBytes: activeGB * gib, TimeTravelBytes: ttGB * gib, FailsafeBytes: fsGB * gib,
			// $23 per TB-month
			MonthlyCost:  total.Mul(decimal.RequireFromString("0.023")).Round(2),
			LastAccessed: day(-accessed),
		}
	}
	return []StorageItem{
		s("RAW", "PUBLIC", "EVENTS", 8200, 1400, 2100, 0),
		s("RAW", "PUBLIC", "PAGE_VIEWS", 5100, 620, 980, 1),
		s("CORE", "PUBLIC", "ORDERS", 1900, 240, 310, 0),
		s("CORE", "PUBLIC", "CUSTOMERS", 210, 18, 30, 0),
		s("DS", "SANDBOX", "FEATURES_V1", 2400, 0, 350, 142),
		s("DS", "SANDBOX", "FEATURES_V2", 2450, 60, 360, 12),
		s("STAGING", "PUBLIC", "EVENTS_BACKUP_2023", 3900, 0, 580, 301),
		s("FINANCE", "LEDGER", "ENTRIES", 95, 12, 14, 2),
	}
}

func invoices() []Invoice {
	inv := func(n int, period string, amount string, status string, issued int) Invoice {
		return Invoice{
			Number:   fmt.Sprintf("INV-2025%02d-%04d", n, 4410+n),
			Period:   period,
			Amount:   decimal.RequireFromString(amount),
			Status:   status,
			IssuedAt: day(-issued),
		}
	}
	return []Invoice{
		inv(5, "May 2025", "258.12", "pending", 0),
		inv(4, "April 2025", "258.12", "paid", 31),
		inv(3, "March 2025", "258.12", "paid", 61),
		inv(2, "February 2025", "52.92", "paid", 92),
		inv(1, "January 2025", "52.92", "paid", 120),
	}
}

func recommendations() []Recommendation {
	return []Recommendation{
		{
			ID: "rec-001", Title: "Project only needed columns from RAW.EVENTS",
			Category: QueryRewrite, Impact: "high", Savings: decimal.RequireFromString("1240.00"),
			Warehouse: "ETL_WH", QueryID: "01b43a10-0000-7c21-0000-1000",
			Description: "The nightly extract selects every column but downstream models read four. Pruning columns cuts bytes scanned by about 80%.",
			OriginalSQL: `SELECT *
FROM RAW.EVENTS
WHERE EVENT_DATE >= DATEADD(day, -30, CURRENT_DATE());
`,
			OptimizedSQL: `SELECT EVENT_ID,
       USER_ID,
       EVENT_TYPE,
       EVENT_DATE
FROM RAW.EVENTS
WHERE EVENT_DATE >= DATEADD(day, -30, CURRENT_DATE());
`,
		},
		{
			ID: "rec-002", Title: "Filter before joining CUSTOMERS in feature build",
			Category: QueryRewrite, Impact: "medium", Savings: decimal.RequireFromString("610.50"),
			Warehouse: "DEV_WH", QueryID: "01b43a33-0000-7c21-0000-1005",
			Description: "Push the date predicate into a CTE so the join only touches the last quarter of orders.",
			OriginalSQL: `CREATE OR REPLACE TABLE DS.FEATURES AS
SELECT *
FROM CORE.ORDERS O
JOIN CORE.CUSTOMERS C ON O.CUSTOMER_ID = C.ID;
`,
			OptimizedSQL: `CREATE OR REPLACE TABLE DS.FEATURES AS
WITH RECENT AS (
  SELECT ID, CUSTOMER_ID, TOTAL, ORDER_DATE
  FROM CORE.ORDERS
  WHERE ORDER_DATE >= DATEADD(quarter, -1, CURRENT_DATE())
)
SELECT R.*, C.REGION, C.SEGMENT
FROM RECENT R
JOIN CORE.CUSTOMERS C ON R.CUSTOMER_ID = C.ID;
`,
		},
		{
			ID: "rec-003", Title: "Replace DISTINCT scan with approximate count",
			Category: QueryRewrite, Impact: "low", Savings: decimal.RequireFromString("95.25"),
			Warehouse: "ANALYTICS_WH", QueryID: "01b43a2c-0000-7c21-0000-1004",
			Description: "Dashboards only need the number of unique users; APPROX_COUNT_DISTINCT avoids a full sort.",
			OriginalSQL:  "SELECT DISTINCT USER_ID FROM RAW.PAGE_VIEWS;\n",
			OptimizedSQL: "SELECT APPROX_COUNT_DISTINCT(USER_ID) AS UNIQUE_USERS\nFROM RAW.PAGE_VIEWS;\n",
		},
		{
			ID: "rec-004", Title: "Downsize ETL_WH from X-Large to Large",
			Category: WarehouseSizing, Impact: "high", Savings: decimal.RequireFromString("1368.00"),
			Warehouse: "ETL_WH",
			Description: "Average utilisation stayed under 40% for 30 days; queue time would stay below 2s at Large.",
		},
		{
			ID: "rec-005", Title: "Lower ANALYTICS_WH auto-suspend to 60s",
			Category: AutoSuspend, Impact: "medium", Savings: decimal.RequireFromString("420.00"),
			Warehouse: "ANALYTICS_WH",
			Description: "The warehouse idles for 15 minutes after most bursts.",
		},
		{
			ID: "rec-006", Title: "Drop STAGING.EVENTS_BACKUP_2023",
			Category: StorageCleanup, Impact: "low", Savings: decimal.RequireFromString("102.91"),
			Warehouse: "",
			Description: "Not read in 300 days and duplicated in RAW.EVENTS.",
		},
		{
			ID: "rec-007", Title: "Cluster RAW.EVENTS on EVENT_DATE",
			Category: Clustering, Impact: "medium", Savings: decimal.RequireFromString("380.00"),
			Warehouse: "ETL_WH",
			Description: "Most queries filter on EVENT_DATE but partitions are poorly pruned (depth 41).",
		},
	}
}

func notifications() []Notification {
	return []Notification{
		{ID: "n-01", Category: CostSpike, Title: "ETL_WH spend up 46%", Body: "Daily spend on ETL_WH reached $412 against a 7-day average of $282.", CreatedAt: day(0).Add(-2 * time.Hour)},
		{ID: "n-02", Category: BudgetAlert, Title: "ACME_PROD at 80% of budget", Body: "Monthly budget of $6,000 is 80% consumed with 9 days remaining.", CreatedAt: day(-1)},
		{ID: "n-03", Category: NewRecommendation, Title: "3 new recommendations", Body: "Potential savings of $1,945/month were found in last night's analysis.", CreatedAt: day(-1).Add(-3 * time.Hour)},
		{ID: "n-04", Category: QueryFailure, Title: "Query failed on TRANSFORM_WH", Body: "MERGE into CORE.CUSTOMERS failed: statement timed out.", CreatedAt: day(-2), Read: true},
		{ID: "n-05", Category: BillingNotice, Title: "Invoice INV-202504-4414 paid", Body: "Your Team plan payment of $258.12 was received.", CreatedAt: day(-31), Read: true},
		{ID: "n-06", Category: SystemNotice, Title: "Usage sync delayed", Body: "ACCOUNT_USAGE views lag by up to 3 hours.", CreatedAt: day(-3)},
		{ID: "n-07", Category: CostSpike, Title: "DS_WH ran for 6 hours", Body: "A feature build kept DS_WH busy overnight.", CreatedAt: day(-4), Read: true},
		{ID: "n-08", Category: BudgetAlert, Title: "ACME_ANALYTICS forecast over budget", Body: "Forecast $3,120 against a $3,000 budget.", CreatedAt: day(-5)},
	}
}

func members() []team.User {
	return []team.User{
		{ID: "usr_owner", Name: "Priya Raman", Email: "priya@acme.io", Role: team.Owner, Status: team.Active, TokensUsed: 1_284_000, CreditsUsed: 412.5, LastActive: day(0)},
		{ID: "usr_jon", Name: "Jon Park", Email: "jon@acme.io", Role: team.Admin, Status: team.Active, TokensUsed: 864_200, CreditsUsed: 288.0, LastActive: day(0)},
		{ID: "usr_maria", Name: "Maria Lopez", Email: "maria@acme.io", Role: team.Member, Status: team.Active, TokensUsed: 402_900, CreditsUsed: 131.25, LastActive: day(-1)},
		{ID: "usr_dev", Name: "Dev Kim", Email: "dev@acme.io", Role: team.Member, Status: team.Invited},
		{ID: "usr_lee", Name: "Lee Chen", Email: "lee@acme.io", Role: team.Member, Status: team.Suspended, TokensUsed: 12_000, CreditsUsed: 4.5, LastActive: day(-44)},
	}
}
