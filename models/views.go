package models

// Projections used by list endpoints. Each is a pure function of the loaded record
// and its preloaded associations.

type OrderView struct {
	Order
	UserName  string `json:"user_name,omitempty"`
	ClassName string `json:"class_name,omitempty"`
}

func NewOrderView(o Order) OrderView {
	v := OrderView{Order: o}
	if o.User != nil {
		v.UserName = o.User.FullName
		v.ClassName = o.User.ClassName
	}
	return v
}

func NewOrderViews(orders []Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, NewOrderView(o))
	}
	return views
}

type PurchaseRequestView struct {
	PurchaseRequest
	CreatedByName   string `json:"created_by_name,omitempty"`
	ProcessedByName string `json:"processed_by_name,omitempty"`
}

func NewPurchaseRequestView(pr PurchaseRequest) PurchaseRequestView {
	v := PurchaseRequestView{PurchaseRequest: pr}
	if pr.Creator != nil {
		v.CreatedByName = pr.Creator.FullName
	}
	if pr.Processor != nil {
		v.ProcessedByName = pr.Processor.FullName
	}
	return v
}

func NewPurchaseRequestViews(requests []PurchaseRequest) []PurchaseRequestView {
	views := make([]PurchaseRequestView, 0, len(requests))
	for _, pr := range requests {
		views = append(views, NewPurchaseRequestView(pr))
	}
	return views
}

// UserSummary is the short user block returned by register and login.
type UserSummary struct {
	ID        uint     `json:"id"`
	Username  string   `json:"username"`
	FullName  string   `json:"full_name"`
	Role      UserRole `json:"role"`
	ClassName string   `json:"class_name"`
	Balance   Money    `json:"balance"`
}

func NewUserSummary(u *User) UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		ClassName: u.ClassName,
		Balance:   u.Balance,
	}
}
