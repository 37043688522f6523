package port

import "gas_checker/internal/domain/entity"

// RouteProvider loads routes prepared elsewhere (route JSON files).
type RouteProvider interface {
	LoadRoute(path string) (*entity.Route, error)
	LoadRoutes(dir string) ([]entity.Route, error)
}

// AccountProvider loads the accounts to check.
type AccountProvider interface {
	LoadAccounts(path string) ([]entity.Account, error)
}
