package appstate

import (
	"testing"

	"github.com/abgdnv/weblarek/internal/domain"
	"github.com/abgdnv/weblarek/internal/event"
	"github.com/abgdnv/weblarek/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emitted is one event seen by the recorder.
type emitted struct {
	name    string
	payload any
}

// recorder sits in front of the bus and captures every emit in order.
type recorder struct {
	bus    *event.Bus
	events []emitted
	// baskets holds basket payload contents copied at emit time.
	baskets [][]*domain.Product
}

func (r *recorder) Emit(name string, payload any) {
	r.events = append(r.events, emitted{name: name, payload: payload})
	if items, ok := payload.([]*domain.Product); ok {
		r.baskets = append(r.baskets, append([]*domain.Product{}, items...))
	}
	r.bus.Emit(name, payload)
}

func (r *recorder) names() []string {
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.name)
	}
	return names
}

func (r *recorder) count(name string) int {
	n := 0
	for _, e := range r.events {
		if e.name == name {
			n++
		}
	}
	return n
}

func (r *recorder) last(name string) (any, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].name == name {
			return r.events[i].payload, true
		}
	}
	return nil, false
}

func (r *recorder) reset() {
	r.events = nil
	r.baskets = nil
}

func newTestState(t *testing.T) (*AppState, *recorder) {
	t.Helper()
	rec := &recorder{bus: event.New()}
	return New(rec), rec
}

func testProducts() (*domain.Product, *domain.Product) {
	a := &domain.Product{ID: "854cef69", Title: "+1 час в сутках", Category: "софт-скил", Price: domain.Price(750)}
	b := &domain.Product{ID: "c101ab44", Title: "HEX-леденец", Category: "другое", Price: domain.Price(1450)}
	return a, b
}

func Test_AppState_ReplaceCatalog(t *testing.T) {
	// given
	state, rec := newTestState(t)
	a, b := testProducts()

	// when
	state.ReplaceCatalog([]*domain.Product{a, b})

	// then
	assert.Equal(t, []string{EventItemsChanged}, rec.names())
	payload, _ := rec.last(EventItemsChanged)
	assert.Equal(t, []*domain.Product{a, b}, payload)
	assert.Equal(t, []*domain.Product{a, b}, state.Catalog())

	found, ok := state.ProductByID(b.ID)
	assert.True(t, ok)
	assert.Same(t, b, found)
	_, ok = state.ProductByID("missing")
	assert.False(t, ok)
}

func Test_AppState_ReplaceCatalog_Wholesale(t *testing.T) {
	// given
	state, _ := newTestState(t)
	a, b := testProducts()
	state.ReplaceCatalog([]*domain.Product{a, b})

	// when
	state.ReplaceCatalog(nil)

	// then
	assert.Empty(t, state.Catalog())
}

func Test_AppState_SelectPreview(t *testing.T) {
	// given
	state, rec := newTestState(t)
	a, _ := testProducts()

	// when
	state.SelectPreview(a)

	// then
	id, ok := state.Preview()
	assert.True(t, ok)
	assert.Equal(t, a.ID, id)
	payload, found := rec.last(EventPreviewChanged)
	require.True(t, found)
	assert.Same(t, a, payload)
}

func Test_AppState_Preview_InitiallyEmpty(t *testing.T) {
	state, _ := newTestState(t)
	_, ok := state.Preview()
	assert.False(t, ok)
}

func Test_AppState_AddToBasket_NoDuplicates(t *testing.T) {
	// given
	state, rec := newTestState(t)
	a, b := testProducts()
	state.ReplaceCatalog([]*domain.Product{a, b})
	rec.reset()

	// when
	state.AddToBasket(a)
	state.AddToBasket(a)

	// then
	assert.Equal(t, []*domain.Product{a}, state.Basket(), "first catalog item must not be added twice")
	assert.Equal(t, 2, rec.count(EventBasketChanged))
	assert.Equal(t, 2, rec.count(EventCountChanged))
	assert.Equal(t, int64(750), state.Order().Total)
}

func Test_AppState_AddToBasket_IdentityNotValue(t *testing.T) {
	// given
	state, _ := newTestState(t)
	a, _ := testProducts()
	twin := *a

	// when
	state.AddToBasket(a)
	state.AddToBasket(&twin)

	// then
	assert.Equal(t, 2, state.Count())
}

func Test_AppState_BasketEvents_PostMutation(t *testing.T) {
	a, b := testProducts()
	testCases := []struct {
		name     string
		prepare  []*domain.Product
		mutate   func(s *AppState)
		expected []*domain.Product
	}{
		{
			name:     "add",
			prepare:  []*domain.Product{a},
			mutate:   func(s *AppState) { s.AddToBasket(b) },
			expected: []*domain.Product{a, b},
		},
		{
			name:     "add existing",
			prepare:  []*domain.Product{a, b},
			mutate:   func(s *AppState) { s.AddToBasket(a) },
			expected: []*domain.Product{a, b},
		},
		{
			name:     "remove",
			prepare:  []*domain.Product{a, b},
			mutate:   func(s *AppState) { s.RemoveFromBasket(a) },
			expected: []*domain.Product{b},
		},
		{
			name:     "remove absent",
			prepare:  []*domain.Product{b},
			mutate:   func(s *AppState) { s.RemoveFromBasket(a) },
			expected: []*domain.Product{b},
		},
		{
			name:     "clear",
			prepare:  []*domain.Product{a, b},
			mutate:   func(s *AppState) { s.ClearBasket() },
			expected: []*domain.Product{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			state, rec := newTestState(t)
			for _, p := range tc.prepare {
				state.AddToBasket(p)
			}
			rec.reset()

			// when
			tc.mutate(state)

			// then
			assert.Equal(t, []string{EventBasketChanged, EventCountChanged}, rec.names())
			require.Len(t, rec.baskets, 2)
			assert.Equal(t, tc.expected, rec.baskets[0])
			assert.Equal(t, tc.expected, rec.baskets[1])
			assert.Equal(t, tc.expected, state.Basket())
			assert.Equal(t, domain.Total(tc.expected), state.Order().Total)
		})
	}
}

func Test_AppState_Basket_RandomSequencesNeverDuplicate(t *testing.T) {
	// given
	state, _ := newTestState(t)
	a, b := testProducts()
	c := &domain.Product{ID: "c", Price: domain.Price(1)}
	products := []*domain.Product{a, b, c}
	ops := []struct {
		add bool
		idx int
	}{
		{true, 0}, {true, 0}, {true, 1}, {false, 0}, {true, 0}, {true, 2},
		{true, 1}, {false, 1}, {true, 1}, {true, 0}, {false, 2}, {true, 2},
	}

	for _, op := range ops {
		// when
		if op.add {
			state.AddToBasket(products[op.idx])
		} else {
			state.RemoveFromBasket(products[op.idx])
		}

		// then
		seen := map[*domain.Product]bool{}
		for _, item := range state.Basket() {
			assert.False(t, seen[item], "duplicate %s", item.ID)
			seen[item] = true
		}
	}
	assert.Equal(t, []*domain.Product{a, b, c}, state.Basket())
}

func Test_AppState_ClearBasket_ZeroTotal(t *testing.T) {
	// given
	state, _ := newTestState(t)
	a, b := testProducts()
	state.AddToBasket(a)
	state.AddToBasket(b)
	state.OpenOrder()

	// when
	state.ClearBasket()

	// then
	assert.Equal(t, 0, state.Count())
	assert.Equal(t, int64(0), domain.Total(state.Basket()))
	assert.Equal(t, int64(0), state.Order().Total)
}

func Test_AppState_RebindBasket(t *testing.T) {
	// given
	state, rec := newTestState(t)
	a, b := testProducts()
	state.ReplaceCatalog([]*domain.Product{a, b})
	state.AddToBasket(a)
	state.AddToBasket(b)
	freshA := &domain.Product{ID: a.ID, Title: a.Title, Price: domain.Price(800)}
	state.ReplaceCatalog([]*domain.Product{freshA})
	rec.reset()

	// when
	state.RebindBasket()
	state.AddToBasket(freshA)

	// then
	assert.Equal(t, []*domain.Product{freshA}, state.Basket())
	assert.Same(t, freshA, state.Basket()[0])
	assert.Equal(t, int64(800), state.Order().Total)
	assert.Equal(t, 2, rec.count(EventBasketChanged))
	assert.Equal(t, 2, rec.count(EventCountChanged))
	assert.Equal(t, []*domain.Product{freshA}, rec.baskets[0])
}

func Test_AppState_RebindBasket_EmptyIsSilent(t *testing.T) {
	// given
	state, rec := newTestState(t)
	a, _ := testProducts()
	state.ReplaceCatalog([]*domain.Product{a})
	rec.reset()

	// when
	state.RebindBasket()

	// then
	assert.Empty(t, rec.events)
}

func Test_AppState_OpenOrder_CapturesItems(t *testing.T) {
	// given
	state, _ := newTestState(t)
	a, b := testProducts()
	state.AddToBasket(b)
	state.AddToBasket(a)

	// when
	state.OpenOrder()
	state.RemoveFromBasket(a)

	// then
	order := state.Order()
	assert.Equal(t, []string{b.ID, a.ID}, order.Items, "items are a snapshot taken when the order opened")
	assert.Equal(t, int64(1450), order.Total, "total follows the basket")
}

func Test_AppState_ResetOrder(t *testing.T) {
	// given
	state, _ := newTestState(t)
	a, _ := testProducts()
	state.AddToBasket(a)
	state.OpenOrder()
	state.SetPayment(domain.PaymentCash)
	state.SetDeliveryField(DeliveryAddress, "ул. Ленина, 5")
	state.SetContactField(ContactEmail, "buyer@mail.ru")
	state.ClearBasket()

	// when
	state.ResetOrder()

	// then
	assert.Equal(t, domain.NewOrder(), state.Order())
}

func Test_AppState_ValidateDelivery(t *testing.T) {
	testCases := []struct {
		name          string
		address       string
		expectValid   bool
		expectedError domain.FormErrors
	}{
		{name: "empty address", address: "", expectValid: false, expectedError: domain.FormErrors{validation.FieldAddress: validation.MsgAddress}},
		{name: "valid address", address: "ул. Ленина, 5", expectValid: true, expectedError: domain.FormErrors{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			state, rec := newTestState(t)
			state.order.Address = tc.address

			// when
			valid := state.ValidateDelivery()

			// then
			assert.Equal(t, tc.expectValid, valid)
			assert.Equal(t, tc.expectedError, state.FormErrors())
			assert.Equal(t, []string{EventDeliveryFormChanged}, rec.names(), "emitted even without errors")
			payload, _ := rec.last(EventDeliveryFormChanged)
			assert.Equal(t, tc.expectedError, payload)
		})
	}
}

func Test_AppState_ValidateContacts(t *testing.T) {
	testCases := []struct {
		name         string
		email        string
		phone        string
		expectValid  bool
		expectedKeys []string
	}{
		{name: "both invalid", email: "", phone: "12", expectValid: false, expectedKeys: []string{validation.FieldEmail, validation.FieldPhone}},
		{name: "email invalid", email: "nope", phone: "+79998887766", expectValid: false, expectedKeys: []string{validation.FieldEmail}},
		{name: "phone invalid", email: "buyer@mail.ru", phone: "123", expectValid: false, expectedKeys: []string{validation.FieldPhone}},
		{name: "both valid", email: "buyer@mail.ru", phone: "+79998887766", expectValid: true, expectedKeys: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			state, rec := newTestState(t)
			state.order.Email = tc.email
			state.order.Phone = tc.phone

			// when
			valid := state.ValidateContacts()

			// then
			assert.Equal(t, tc.expectValid, valid)
			errs := state.FormErrors()
			assert.Len(t, errs, len(tc.expectedKeys))
			for _, key := range tc.expectedKeys {
				assert.Contains(t, errs, key)
			}
			assert.Equal(t, 1, rec.count(EventContactsFormChanged))
		})
	}
}

func Test_AppState_ValidationPassesOverwriteEachOther(t *testing.T) {
	// given
	state, _ := newTestState(t)
	require.False(t, state.ValidateContacts())
	require.Len(t, state.FormErrors(), 2)

	// when
	state.order.Address = "ул. Ленина, 5"
	valid := state.ValidateDelivery()

	// then
	assert.True(t, valid)
	assert.Empty(t, state.FormErrors(), "contacts errors are dropped by a delivery pass")
}

func Test_AppState_SetDeliveryField(t *testing.T) {
	testCases := []struct {
		name           string
		field          DeliveryField
		value          string
		expectedEvents []string
	}{
		{
			name:           "Cyrillic address passes",
			field:          DeliveryAddress,
			value:          "ул. Ленина, 5",
			expectedEvents: []string{EventDeliveryFormChanged, EventOrdersDeliveryChanged},
		},
		{
			name:           "Latin address fails",
			field:          DeliveryAddress,
			value:          "Lenin St",
			expectedEvents: []string{EventDeliveryFormChanged},
		},
		{
			name:           "payment with empty address fails",
			field:          DeliveryPayment,
			value:          string(domain.PaymentCash),
			expectedEvents: []string{EventDeliveryFormChanged},
		},
		{
			name:           "unknown field is ignored",
			field:          DeliveryField("email"),
			value:          "x",
			expectedEvents: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			state, rec := newTestState(t)

			// when
			state.SetDeliveryField(tc.field, tc.value)

			// then
			assert.Equal(t, tc.expectedEvents, append([]string{}, rec.names()...))
			if rec.count(EventOrdersDeliveryChanged) == 1 {
				payload, _ := rec.last(EventOrdersDeliveryChanged)
				order, ok := payload.(*domain.Order)
				require.True(t, ok)
				assert.Equal(t, tc.value, order.Address)
			}
		})
	}
}

func Test_AppState_SetDeliveryField_Payment(t *testing.T) {
	// given
	state, rec := newTestState(t)
	state.SetDeliveryField(DeliveryAddress, "ул. Ленина, 5")
	rec.reset()

	// when
	state.SetDeliveryField(DeliveryPayment, string(domain.PaymentCash))

	// then
	assert.Equal(t, domain.PaymentCash, state.Order().Payment)
	assert.Equal(t, []string{EventDeliveryFormChanged, EventOrdersDeliveryChanged}, rec.names())
}

func Test_AppState_SetContactField(t *testing.T) {
	// given
	state, rec := newTestState(t)

	// when: phone valid, email still empty
	state.SetContactField(ContactPhone, "+79998887766")

	// then
	assert.Equal(t, []string{EventContactsFormChanged}, rec.names())
	assert.Equal(t, domain.FormErrors{validation.FieldEmail: validation.MsgEmail}, state.FormErrors())

	// when: email becomes valid
	rec.reset()
	state.SetContactField(ContactEmail, "buyer@mail.ru")

	// then
	assert.Equal(t, []string{EventContactsFormChanged, EventOrdersContactsChanged}, rec.names())
	assert.Empty(t, state.FormErrors())

	// when: phone turns invalid while email is valid
	rec.reset()
	state.SetContactField(ContactPhone, "123")

	// then
	assert.Equal(t, []string{EventContactsFormChanged}, rec.names())
	assert.Equal(t, domain.FormErrors{validation.FieldPhone: validation.MsgPhone}, state.FormErrors())
}

func Test_AppState_SetContactField_UnknownIgnored(t *testing.T) {
	state, rec := newTestState(t)
	state.SetContactField(ContactField("address"), "x")
	assert.Empty(t, rec.events)
	assert.Equal(t, domain.NewOrder(), state.Order())
}

func Test_FieldChange_Name(t *testing.T) {
	change := FieldChange{Form: FormDelivery, Field: "address", Value: "ул. Ленина, 5"}
	assert.Equal(t, "order.address:change", change.Name())
	assert.True(t, FieldChanges(FormDelivery).Match(change.Name()))
	assert.False(t, FieldChanges(FormContacts).Match(change.Name()))
	assert.True(t, ValidDeliveryField("payment"))
	assert.False(t, ValidDeliveryField("email"))
	assert.True(t, ValidContactField("phone"))
	assert.False(t, ValidContactField("address"))
}
