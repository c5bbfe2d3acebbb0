package service

import (
	"context"
	"time"

	"school-cafe-api/auth"
	"school-cafe-api/models"
	"school-cafe-api/store"
)

const (
	reportTopN        = 10
	reportRecentLimit = 100
	reportDays        = 7
)

type ReportService struct {
	base
	now func() time.Time
}

func newReportService(b base) *ReportService {
	return &ReportService{base: b, now: time.Now}
}

type Totals struct {
	Users            int64        `json:"users"`
	Orders           int64        `json:"orders"`
	Dishes           int64        `json:"dishes"`
	PurchaseRequests int64        `json:"purchase_requests"`
	Revenue          models.Money `json:"revenue"`
	TotalBalance     models.Money `json:"total_balance"`
}

type DailyStat struct {
	Date       string       `json:"date"`
	OrderCount int          `json:"order_count"`
	Revenue    models.Money `json:"revenue"`
}

type SummaryReport struct {
	Totals            Totals                  `json:"totals"`
	OrdersByStatus    []store.StatusCount     `json:"orders_by_status"`
	RevenueByCategory []store.CategoryRevenue `json:"revenue_by_category"`
	TopDishes         []store.DishSales       `json:"top_dishes"`
	TopStudents       []store.StudentSpending `json:"top_students"`
	DailyStats        []DailyStat             `json:"daily_stats"`
	PurchasesByStatus []store.StatusCount     `json:"purchase_requests_by_status"`
	GeneratedAt       time.Time               `json:"generated_at"`
}

type DetailedReport struct {
	Orders      []models.OrderView   `json:"orders"`
	Users       []store.UserActivity `json:"users"`
	Dishes      []store.DishActivity `json:"dishes"`
	GeneratedAt time.Time            `json:"generated_at"`
}

type HealthReport struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Totals   Totals    `json:"totals"`
	Time     time.Time `json:"timestamp"`
}

// Summary aggregates the whole store. Sub-queries are independent reads, so the result is
// a best-effort snapshot while writes are in flight.
func (s *ReportService) Summary(ctx context.Context, p auth.Principal) (*SummaryReport, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}

	r := &SummaryReport{GeneratedAt: s.now()}
	var err error
	if r.Totals, err = s.totals(ctx); err != nil {
		return nil, err
	}
	if r.OrdersByStatus, err = s.store.OrdersByStatus(ctx); err != nil {
		return nil, err
	}
	if r.RevenueByCategory, err = s.store.RevenueByCategory(ctx); err != nil {
		return nil, err
	}
	if r.TopDishes, err = s.store.TopDishes(ctx, reportTopN); err != nil {
		return nil, err
	}
	if r.TopStudents, err = s.store.TopStudents(ctx, reportTopN); err != nil {
		return nil, err
	}
	if r.DailyStats, err = s.daily(ctx); err != nil {
		return nil, err
	}
	if r.PurchasesByStatus, err = s.store.PurchaseRequestsByStatus(ctx); err != nil {
		return nil, err
	}

	s.log.Info("Summary report generated", "admin_id", p.UserID, "orders", r.Totals.Orders)
	return r, nil
}

func (s *ReportService) Detailed(ctx context.Context, p auth.Principal) (*DetailedReport, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}

	orders, err := s.store.RecentOrders(ctx, reportRecentLimit)
	if err != nil {
		return nil, err
	}
	users, err := s.store.UserActivity(ctx)
	if err != nil {
		return nil, err
	}
	dishes, err := s.store.DishActivity(ctx)
	if err != nil {
		return nil, err
	}

	s.log.Info("Detailed report generated", "admin_id", p.UserID)
	return &DetailedReport{
		Orders:      models.NewOrderViews(orders),
		Users:       users,
		Dishes:      dishes,
		GeneratedAt: s.now(),
	}, nil
}

// Health reports liveness and entity counts. It needs no credential.
func (s *ReportService) Health(ctx context.Context) (*HealthReport, error) {
	if err := s.store.Ping(ctx); err != nil {
		s.log.Error("Database ping failed", "error", err)
		return &HealthReport{Status: "unhealthy", Database: "unreachable", Time: s.now()}, err
	}
	totals, err := s.totals(ctx)
	if err != nil {
		return &HealthReport{Status: "unhealthy", Database: "error", Time: s.now()}, err
	}
	return &HealthReport{Status: "healthy", Database: "connected", Totals: totals, Time: s.now()}, nil
}

func (s *ReportService) totals(ctx context.Context) (Totals, error) {
	var t Totals
	var err error
	if t.Users, err = s.store.CountUsers(ctx); err != nil {
		return t, err
	}
	if t.Orders, err = s.store.CountOrders(ctx); err != nil {
		return t, err
	}
	if t.Dishes, err = s.store.CountDishes(ctx); err != nil {
		return t, err
	}
	if t.PurchaseRequests, err = s.store.CountPurchaseRequests(ctx); err != nil {
		return t, err
	}
	if t.Revenue, err = s.store.ServedRevenue(ctx); err != nil {
		return t, err
	}
	if t.TotalBalance, err = s.store.TotalBalance(ctx); err != nil {
		return t, err
	}
	return t, nil
}

// daily buckets the last seven days (today included) by local date, oldest first.
// Every day appears even without orders. Revenue counts served orders only.
func (s *ReportService) daily(ctx context.Context) ([]DailyStat, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -(reportDays - 1))

	orders, err := s.store.OrdersSince(ctx, start)
	if err != nil {
		return nil, err
	}

	stats := make([]DailyStat, reportDays)
	index := make(map[string]int, reportDays)
	for i := range stats {
		date := start.AddDate(0, 0, i).Format(time.DateOnly)
		stats[i].Date = date
		index[date] = i
	}
	for _, o := range orders {
		i, ok := index[o.CreatedAt.In(now.Location()).Format(time.DateOnly)]
		if !ok {
			continue
		}
		stats[i].OrderCount++
		if o.Status == models.StatusServed {
			stats[i].Revenue += o.Price
		}
	}
	return stats, nil
}
