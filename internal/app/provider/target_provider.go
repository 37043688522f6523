package provider

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gas_checker/internal/app/port"
	"gas_checker/internal/domain/entity"
)

// ErrNoTargets is returned when no (account, route) pair could be built.
var ErrNoTargets = errors.New("no accounts or routes to check")

// Target is an (account, route) pair to evaluate.
type Target struct {
	Account entity.Account
	Route   entity.Route
}

// TargetProvider builds check targets from route files and account lists.
type TargetProvider struct {
	routes   port.RouteProvider
	accounts port.AccountProvider
	logger   port.Logger

	mu          sync.Mutex
	routesCache map[string][]entity.Route // Key: route file or directory path
}

// NewTargetProvider creates a new TargetProvider.
func NewTargetProvider(routes port.RouteProvider, accounts port.AccountProvider, logger port.Logger) *TargetProvider {
	return &TargetProvider{
		routes:      routes,
		accounts:    accounts,
		logger:      logger,
		routesCache: make(map[string][]entity.Route),
	}
}

// Routes loads the routes at path, a single route file or a directory of them.
// It caches the results after the first successful load.
func (p *TargetProvider) Routes(path string) ([]entity.Route, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cached, ok := p.routesCache[path]; ok {
		p.logger.Debug("Returning cached routes", "path", path)
		return cached, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat route path %s: %w", path, err)
	}

	var routes []entity.Route
	if info.IsDir() {
		routes, err = p.routes.LoadRoutes(path)
		if err != nil {
			return nil, err
		}
	} else {
		route, err := p.routes.LoadRoute(path)
		if err != nil {
			return nil, err
		}
		routes = []entity.Route{*route}
	}

	p.routesCache[path] = routes
	return routes, nil
}

// Targets pairs every account with every route found at routePath. Accounts come from
// accountsPath (optional) followed by extra.
func (p *TargetProvider) Targets(routePath, accountsPath string, extra ...entity.Account) ([]Target, error) {
	routes, err := p.Routes(routePath)
	if err != nil {
		return nil, err
	}

	var accounts []entity.Account
	if accountsPath != "" {
		loaded, err := p.accounts.LoadAccounts(accountsPath)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, loaded...)
	}
	for _, account := range extra {
		if account.IsConnected() {
			accounts = append(accounts, account)
		}
	}

	if len(routes) == 0 || len(accounts) == 0 {
		return nil, ErrNoTargets
	}

	targets := make([]Target, 0, len(routes)*len(accounts))
	for _, account := range accounts {
		for _, route := range routes {
			targets = append(targets, Target{Account: account, Route: route})
		}
	}
	p.logger.Info("Check targets prepared", "accounts", len(accounts), "routes", len(routes))
	return targets, nil
}
