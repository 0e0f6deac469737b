package minipress

import "github.com/minipress/minipress/views"

// DefaultViews returns the stock templates shipped with minipress. A fresh
// install can run with these; most sites swap in their own templ components.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:           views.Home,
		Post:           views.PostView,
		Login:          views.LoginView,
		AdminDashboard: views.DashboardView,
		AdminEditor:    views.EditorView,
		AdminImages:    views.ImagesView,
		NotFound:       views.NotFound,
		ServerError:    views.ServerError,
	}
}
