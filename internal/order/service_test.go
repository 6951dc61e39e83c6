package order

import (
	"errors"
	"sync"
	"testing"

	"github.com/naruebet87/local-market-backend/internal/address"
	"github.com/naruebet87/local-market-backend/internal/cart"
	"github.com/naruebet87/local-market-backend/internal/product"
	"github.com/naruebet87/local-market-backend/internal/shop"
	"github.com/naruebet87/local-market-backend/internal/user"
)

const (
	keeperFruit = 10
	keeperTea   = 11
	custBangkok = 20 // has coordinates on profile
	custNowhere = 21 // no address, no coordinates
	agentFree   = 30
	agentBusy   = 31
)

func seedUsers() []user.User {
	return []user.User{
		{ID: custBangkok, Role: user.RoleCustomer, Latitude: 13.75, Longitude: 100.5},
		{ID: custNowhere, Role: user.RoleCustomer},
		{ID: keeperFruit, Role: user.RoleShopkeeper},
		{ID: keeperTea, Role: user.RoleShopkeeper},
		{ID: agentFree, Role: user.RoleDeliveryAgent, Available: true},
		{ID: agentBusy, Role: user.RoleDeliveryAgent, Available: false},
	}
}

func seedProducts() []product.Product {
	return []product.Product{
		{ProductID: 1, ShopID: 1, ProductName: "Mango Sticky Rice", Price: 50, Stock: 5},
		{ProductID: 2, ShopID: 1, ProductName: "Durian Pack", Price: 100, Stock: 0},
		{ProductID: 3, ShopID: 2, ProductName: "Thai Tea", Price: 25, Stock: 3},
	}
}

func seedShops() []shop.Shop {
	return []shop.Shop{
		{ShopID: 1, ShopkeeperID: keeperFruit, ShopName: "Fruit Corner"},
		{ShopID: 2, ShopkeeperID: keeperTea, ShopName: "Tea House"},
	}
}

// newWorld wires the order service against in-memory stores. addrs seeds the
// customer's saved addresses keyed by user id.
func newWorld(carts []cart.Cart, addrs map[int][]address.Address) (*Service, *InMemoryRepository) {
	repo := NewInMemoryRepository(seedProducts(), carts, seedShops(), seedUsers())
	users := user.NewService(user.NewInMemoryRepository(seedUsers()))
	shops := shop.NewService(shop.NewInMemoryRepository(seedShops()))
	addresses := address.NewService(address.NewInMemoryRepository(addrs))
	return NewService(repo, users, shops, addresses), repo
}

func TestCheckout_Success(t *testing.T) {
	carts := []cart.Cart{{
		CartID: 1, CustomerID: custBangkok, ShopID: 1,
		Lines: []cart.Line{{ProductID: 1, ProductName: "Mango Sticky Rice", UnitPrice: 50, Quantity: 1}},
	}}
	svc, repo := newWorld(carts, nil)

	o, err := svc.Checkout(custBangkok)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if o.Status != StatusPending {
		t.Fatalf("expected status pending, got %q", o.Status)
	}
	if o.TotalAmount != 50 {
		t.Fatalf("expected total 50, got %v", o.TotalAmount)
	}
	if len(o.Lines) != 1 || o.Lines[0].Quantity != 1 {
		t.Fatalf("unexpected order lines: %+v", o.Lines)
	}
	if o.DeliveryAddress != "13.750000,100.500000" {
		t.Fatalf("expected coordinate fallback address, got %q", o.DeliveryAddress)
	}
	if got := repo.ProductStock(1); got != 4 {
		t.Fatalf("expected stock 4 after checkout, got %d", got)
	}
	if repo.HasCart(custBangkok) {
		t.Fatalf("expected cart to be deleted after checkout")
	}
}

func TestCheckout_PrefersSavedAddress(t *testing.T) {
	carts := []cart.Cart{{
		CartID: 1, CustomerID: custBangkok, ShopID: 1,
		Lines: []cart.Line{{ProductID: 1, ProductName: "Mango Sticky Rice", UnitPrice: 50, Quantity: 1}},
	}}
	addrs := map[int][]address.Address{
		custBangkok: {{AddressID: 5, UserID: custBangkok, AddressDesc: "99 Sukhumvit Rd"}},
	}
	svc, _ := newWorld(carts, addrs)

	o, err := svc.Checkout(custBangkok)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if o.DeliveryAddress != "99 Sukhumvit Rd" {
		t.Fatalf("expected saved address, got %q", o.DeliveryAddress)
	}
}

func TestCheckout_AddressMissing(t *testing.T) {
	carts := []cart.Cart{{
		CartID: 1, CustomerID: custNowhere, ShopID: 1,
		Lines: []cart.Line{{ProductID: 1, ProductName: "Mango Sticky Rice", UnitPrice: 50, Quantity: 1}},
	}}
	svc, repo := newWorld(carts, nil)

	if _, err := svc.Checkout(custNowhere); err != ErrAddressMissing {
		t.Fatalf("expected ErrAddressMissing, got %v", err)
	}
	// nothing was written
	if got := repo.ProductStock(1); got != 5 {
		t.Fatalf("stock changed on failed checkout: %d", got)
	}
	if !repo.HasCart(custNowhere) {
		t.Fatalf("cart deleted on failed checkout")
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, _ := newWorld(nil, nil)

	if _, err := svc.Checkout(custBangkok); err != ErrEmptyCart {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckout_StaleShopDeletesCart(t *testing.T) {
	carts := []cart.Cart{{
		CartID: 1, CustomerID: custBangkok, ShopID: 99,
		Lines: []cart.Line{{ProductID: 1, ProductName: "Mango Sticky Rice", UnitPrice: 50, Quantity: 1}},
	}}
	svc, repo := newWorld(carts, nil)

	if _, err := svc.Checkout(custBangkok); err != ErrShopNotFound {
		t.Fatalf("expected ErrShopNotFound, got %v", err)
	}
	if repo.HasCart(custBangkok) {
		t.Fatalf("expected stale cart to be deleted")
	}
}

func TestCheckout_InsufficientStockNamesProduct(t *testing.T) {
	carts := []cart.Cart{{
		CartID: 1, CustomerID: custBangkok, ShopID: 1,
		Lines: []cart.Line{
			{ProductID: 1, ProductName: "Mango Sticky Rice", UnitPrice: 50, Quantity: 2},
			{ProductID: 2, ProductName: "Durian Pack", UnitPrice: 100, Quantity: 1},
		},
	}}
	svc, repo := newWorld(carts, nil)

	_, err := svc.Checkout(custBangkok)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != 2 || stockErr.Available != 0 || stockErr.Requested != 1 {
		t.Fatalf("unexpected stock error detail: %+v", stockErr)
	}

	// the whole checkout rolled back: product 1 untouched, cart intact
	if got := repo.ProductStock(1); got != 5 {
		t.Fatalf("expected stock 5 after failed checkout, got %d", got)
	}
	if !repo.HasCart(custBangkok) {
		t.Fatalf("expected cart to survive failed checkout")
	}
}

func TestCheckout_ConcurrentNoOversell(t *testing.T) {
	// two customers race for the last units of the same product
	carts := []cart.Cart{
		{CartID: 1, CustomerID: custBangkok, ShopID: 1,
			Lines: []cart.Line{{ProductID: 1, ProductName: "Mango Sticky Rice", UnitPrice: 50, Quantity: 3}}},
		{CartID: 2, CustomerID: custNowhere, ShopID: 1,
			Lines: []cart.Line{{ProductID: 1, ProductName: "Mango Sticky Rice", UnitPrice: 50, Quantity: 3}}},
	}
	addrs := map[int][]address.Address{
		custNowhere: {{AddressID: 6, UserID: custNowhere, AddressDesc: "1 Rama IV Rd"}},
	}
	svc, repo := newWorld(carts, addrs)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, id := range []int{custBangkok, custNowhere} {
		wg.Add(1)
		go func(customerID int) {
			defer wg.Done()
			_, err := svc.Checkout(customerID)
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *InsufficientStockError
		if !errors.As(err, &stockErr) {
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one checkout to win, got %d", succeeded)
	}
	if got := repo.ProductStock(1); got != 2 {
		t.Fatalf("expected stock 2 after the race, got %d", got)
	}
}

func checkoutOrder(t *testing.T, svc *Service) Order {
	t.Helper()
	o, err := svc.Checkout(custBangkok)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	return o
}

func pendingWorld(t *testing.T) (*Service, *InMemoryRepository, Order) {
	t.Helper()
	carts := []cart.Cart{{
		CartID: 1, CustomerID: custBangkok, ShopID: 1,
		Lines: []cart.Line{{ProductID: 1, ProductName: "Mango Sticky Rice", UnitPrice: 50, Quantity: 1}},
	}}
	svc, repo := newWorld(carts, nil)
	return svc, repo, checkoutOrder(t, svc)
}

func TestUpdateStatus_FullLifecycle(t *testing.T) {
	svc, repo, o := pendingWorld(t)

	o2, err := svc.UpdateStatus(keeperFruit, user.RoleShopkeeper, o.OrderID, ActionAccept)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if o2.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %q", o2.Status)
	}

	o3, err := svc.AssignAgent(keeperFruit, o.OrderID, agentFree)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if o3.Status != StatusAssigned || o3.AgentID == nil || *o3.AgentID != agentFree {
		t.Fatalf("unexpected order after assign: %+v", o3)
	}
	if o3.AssignedAt == nil {
		t.Fatalf("expected assignedAt to be stamped")
	}
	if repo.AgentAvailable(agentFree) {
		t.Fatalf("expected agent availability to be cleared on assignment")
	}

	o4, err := svc.UpdateStatus(agentFree, user.RoleDeliveryAgent, o.OrderID, ActionAccept)
	if err != nil {
		t.Fatalf("agent accept failed: %v", err)
	}
	if o4.Status != StatusAcceptedByAgent {
		t.Fatalf("expected accepted_by_agent, got %q", o4.Status)
	}

	o5, err := svc.UpdateStatus(agentFree, user.RoleDeliveryAgent, o.OrderID, ActionPickUp)
	if err != nil {
		t.Fatalf("pick up failed: %v", err)
	}
	if o5.Status != StatusPickedUp || o5.PickedUpAt == nil {
		t.Fatalf("unexpected order after pick up: %+v", o5)
	}

	o6, err := svc.UpdateStatus(agentFree, user.RoleDeliveryAgent, o.OrderID, ActionDeliver)
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if o6.Status != StatusDelivered || o6.DeliveredAt == nil {
		t.Fatalf("unexpected order after delivery: %+v", o6)
	}
}

func TestUpdateStatus_AgentRejectRestoresAvailability(t *testing.T) {
	svc, repo, o := pendingWorld(t)

	if _, err := svc.UpdateStatus(keeperFruit, user.RoleShopkeeper, o.OrderID, ActionAccept); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := svc.AssignAgent(keeperFruit, o.OrderID, agentFree); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	o2, err := svc.UpdateStatus(agentFree, user.RoleDeliveryAgent, o.OrderID, ActionReject)
	if err != nil {
		t.Fatalf("agent reject failed: %v", err)
	}
	if o2.Status != StatusRejectedByAgent {
		t.Fatalf("expected rejected_by_agent, got %q", o2.Status)
	}
	if !repo.AgentAvailable(agentFree) {
		t.Fatalf("expected availability to be restored after agent rejection")
	}
}

func TestUpdateStatus_IllegalPairsLeaveOrderUnchanged(t *testing.T) {
	cases := []struct {
		name    string
		actorID int
		role    string
		action  Action
	}{
		{"shopkeeper pick up from pending", keeperFruit, user.RoleShopkeeper, ActionPickUp},
		{"shopkeeper deliver from pending", keeperFruit, user.RoleShopkeeper, ActionDeliver},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, o := pendingWorld(t)

			_, err := svc.UpdateStatus(tc.actorID, tc.role, o.OrderID, tc.action)
			var ite *InvalidTransitionError
			if !errors.As(err, &ite) {
				t.Fatalf("expected InvalidTransitionError, got %v", err)
			}
			got, _ := svc.GetByID(o.OrderID)
			if got.Status != StatusPending {
				t.Fatalf("order mutated by illegal transition: %q", got.Status)
			}
		})
	}
}

func TestUpdateStatus_SecondAcceptIsInvalid(t *testing.T) {
	svc, _, o := pendingWorld(t)

	if _, err := svc.UpdateStatus(keeperFruit, user.RoleShopkeeper, o.OrderID, ActionAccept); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	_, err := svc.UpdateStatus(keeperFruit, user.RoleShopkeeper, o.OrderID, ActionAccept)
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTransitionError on repeated accept, got %v", err)
	}
	if ite.Current != StatusAccepted {
		t.Fatalf("expected error to carry current status accepted, got %q", ite.Current)
	}
}

func TestUpdateStatus_OwnershipBeforeStateValidity(t *testing.T) {
	svc, _, o := pendingWorld(t)

	// the Tea House keeper does not own this order's shop; even a legal
	// action for the current state must come back forbidden
	if _, err := svc.UpdateStatus(keeperTea, user.RoleShopkeeper, o.OrderID, ActionAccept); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for foreign shopkeeper, got %v", err)
	}

	got, _ := svc.GetByID(o.OrderID)
	if got.Status != StatusPending {
		t.Fatalf("order mutated by forbidden attempt: %q", got.Status)
	}
}

func TestUpdateStatus_WrongAgentForbidden(t *testing.T) {
	svc, _, o := pendingWorld(t)

	if _, err := svc.UpdateStatus(keeperFruit, user.RoleShopkeeper, o.OrderID, ActionAccept); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := svc.AssignAgent(keeperFruit, o.OrderID, agentFree); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	// a different agent than the assigned one must be rejected before any
	// state check happens
	if _, err := svc.UpdateStatus(agentBusy, user.RoleDeliveryAgent, o.OrderID, ActionAccept); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for unassigned agent, got %v", err)
	}
	got, _ := svc.GetByID(o.OrderID)
	if got.Status != StatusAssigned {
		t.Fatalf("order mutated by forbidden attempt: %q", got.Status)
	}
}

func TestUpdateStatus_UnknownAction(t *testing.T) {
	svc, _, o := pendingWorld(t)

	if _, err := svc.UpdateStatus(keeperFruit, user.RoleShopkeeper, o.OrderID, Action("explode")); err != ErrUnknownAction {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestUpdateStatus_CustomerForbidden(t *testing.T) {
	svc, _, o := pendingWorld(t)

	if _, err := svc.UpdateStatus(custBangkok, user.RoleCustomer, o.OrderID, ActionAccept); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for customer, got %v", err)
	}
}

func TestAssignAgent_Preconditions(t *testing.T) {
	svc, _, o := pendingWorld(t)

	if _, err := svc.UpdateStatus(keeperFruit, user.RoleShopkeeper, o.OrderID, ActionAccept); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if _, err := svc.AssignAgent(keeperFruit, o.OrderID, 999); err != ErrAgentNotFound {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
	// a customer id is not an agent
	if _, err := svc.AssignAgent(keeperFruit, o.OrderID, custNowhere); err != ErrAgentNotFound {
		t.Fatalf("expected ErrAgentNotFound for non-agent user, got %v", err)
	}
	if _, err := svc.AssignAgent(keeperFruit, o.OrderID, agentBusy); err != ErrAgentUnavailable {
		t.Fatalf("expected ErrAgentUnavailable, got %v", err)
	}
	if _, err := svc.AssignAgent(keeperTea, o.OrderID, agentFree); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for foreign shopkeeper, got %v", err)
	}
}

func TestAssignAgent_RequiresAcceptedStatus(t *testing.T) {
	svc, _, o := pendingWorld(t)

	_, err := svc.AssignAgent(keeperFruit, o.OrderID, agentFree)
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTransitionError for assign from pending, got %v", err)
	}
	if ite.Current != StatusPending {
		t.Fatalf("expected current status pending in error, got %q", ite.Current)
	}
	if ite.Action != ActionAssign || ite.Role != user.RoleShopkeeper {
		t.Fatalf("expected error to name the assignment attempt, got %+v", ite)
	}
}

func TestListFor_ByRole(t *testing.T) {
	svc, _, o := pendingWorld(t)

	own, err := svc.ListFor(custBangkok, user.RoleCustomer)
	if err != nil || len(own) != 1 || own[0].OrderID != o.OrderID {
		t.Fatalf("customer listing wrong: %v %+v", err, own)
	}

	keeper, err := svc.ListFor(keeperFruit, user.RoleShopkeeper)
	if err != nil || len(keeper) != 1 {
		t.Fatalf("shopkeeper listing wrong: %v %+v", err, keeper)
	}

	other, err := svc.ListFor(keeperTea, user.RoleShopkeeper)
	if err != nil || len(other) != 0 {
		t.Fatalf("foreign shopkeeper should see no orders: %v %+v", err, other)
	}

	agent, err := svc.ListFor(agentFree, user.RoleDeliveryAgent)
	if err != nil || len(agent) != 0 {
		t.Fatalf("unassigned agent should see no orders: %v %+v", err, agent)
	}
}
