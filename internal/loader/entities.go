package loader

import (
	"shopadmin/internal/backend"
	"shopadmin/internal/entity"
)

// ForOrders builds the orders loader: server-side status filtering, free
// text across orderId/userId/status, newest orders first by numeric id.
func ForOrders(store backend.DocumentStore, state *ViewState) *Loader[entity.Order] {
	return New(store, state, Config[entity.Order]{
		Collection:  backend.CollectionOrders,
		Page:        PageOrders,
		StatusField: "orderStatus",
		Decode:      entity.DecodeOrder,
		Match:       entity.MatchOrder,
		SortKey: func(o entity.Order) (int64, bool) {
			return o.OrderID, o.HasOrderID
		},
	})
}

// ForProducts builds the products loader: free text across name/category,
// fetch order preserved.
func ForProducts(store backend.DocumentStore, state *ViewState) *Loader[entity.Product] {
	return New(store, state, Config[entity.Product]{
		Collection: backend.CollectionProducts,
		Page:       PageProducts,
		Decode:     entity.DecodeProduct,
		Match:      entity.MatchProduct,
	})
}

// ForUsers builds the users loader: free text across email/displayName.
func ForUsers(store backend.DocumentStore, state *ViewState) *Loader[entity.User] {
	return New(store, state, Config[entity.User]{
		Collection: backend.CollectionUsers,
		Page:       PageUsers,
		Decode:     entity.DecodeUser,
		Match:      entity.MatchUser,
	})
}

// OrderDetail builds the detail controller behind the order modal.
func OrderDetail(store backend.DocumentStore, state *ViewState) *Detail[entity.Order] {
	return NewDetail(store, state, backend.CollectionOrders, entity.DecodeOrder)
}

// ProductDetail builds the detail controller behind the product modal.
func ProductDetail(store backend.DocumentStore, state *ViewState) *Detail[entity.Product] {
	return NewDetail(store, state, backend.CollectionProducts, entity.DecodeProduct)
}
