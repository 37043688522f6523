package routeloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gas_checker/internal/app/port"
	"gas_checker/internal/domain/entity"
	"gas_checker/internal/pkg/utils"
)

// ErrEmptyRoute is returned for a route file without steps.
var ErrEmptyRoute = errors.New("route has no steps")

// RouteFileLoader implements the port.RouteProvider interface.
type RouteFileLoader struct {
	logger port.Logger
}

// NewRouteLoader creates a new RouteFileLoader.
func NewRouteLoader(logger port.Logger) port.RouteProvider {
	return &RouteFileLoader{logger: logger}
}

// LoadRoute reads a single route JSON file. A route without id takes the file name.
func (l *RouteFileLoader) LoadRoute(path string) (*entity.Route, error) {
	var route entity.Route
	if err := utils.LoadJSONFile(path, &route); err != nil {
		return nil, err
	}
	if len(route.Steps) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyRoute)
	}
	if route.ID == "" {
		route.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	l.logger.Debug("Route loaded", "path", path, "route", route.ID, "steps", len(route.Steps))
	return &route, nil
}

// LoadRoutes reads every *.json route in dir, ordered by file name.
// Files that cannot be parsed are skipped with a warning.
func (l *RouteFileLoader) LoadRoutes(dir string) ([]entity.Route, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read route directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(strings.ToLower(file.Name()), ".json") {
			continue
		}
		names = append(names, file.Name())
	}
	sort.Strings(names)

	routes := make([]entity.Route, 0, len(names))
	for _, name := range names {
		route, err := l.LoadRoute(filepath.Join(dir, name))
		if err != nil {
			l.logger.Warn("Skipping route file", "file", name, "error", err)
			continue
		}
		routes = append(routes, *route)
	}
	l.logger.Info("Routes loaded", "count", len(routes), "path", dir)
	return routes, nil
}
