package render

import "github.com/jaekwang-park/taskboard/internal/model"

// UserCards renders one card per user, or an empty-state message.
func UserCards(users []model.User) *Node {
	container := El("div", Attrs{"id": "users"})
	if len(users) == 0 {
		return container.Append(El("div", Attrs{"className": "empty", "textContent": "No users found."}))
	}
	for _, u := range users {
		container.Append(El("div", Attrs{"className": "user-card", "data-id": u.ID},
			El("h3", Attrs{"textContent": u.Name}),
			El("p", Attrs{"className": "email", "textContent": u.Email}),
			El("p", Attrs{"className": "company", "textContent": u.Company.Name}),
			El("p", Attrs{"className": "location", "textContent": u.Address.City}),
		))
	}
	return container
}

// UserCardsError reports a failed fetch with a link to try again.
func UserCardsError(err error, retryHref string) *Node {
	return El("div", Attrs{"id": "users"},
		El("div", Attrs{"className": "error"},
			El("p", Attrs{"textContent": "Failed to load users: " + err.Error()}),
			El("a", Attrs{"href": retryHref, "className": "btn-retry", "textContent": "Retry"}),
		),
	)
}

// Modal builds an overlay dialog with a close control.
func Modal(title, message string) *Node {
	return El("div", Attrs{"className": "modal-overlay", "id": "modal"},
		El("div", Attrs{"className": "modal"},
			El("h3", Attrs{"textContent": title}),
			El("p", Attrs{"textContent": message}),
			El("button", Attrs{"className": "btn-close", "textContent": "Close"}),
		),
	)
}
