package screen

import (
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui/router"
)

// NewResolver создает экраны по маршруту. Экран логов доступен только с буфером.
func NewResolver(services *ui.Services) router.Resolver {
	return func(route ui.Route) (router.Screen, bool) {
		switch route {
		case ui.RouteMenu:
			return NewMenuScreen(services), true
		case ui.RouteWallet:
			return NewWalletScreen(services), true
		case ui.RouteGallery:
			return NewGalleryScreen(services), true
		case ui.RouteLogs:
			if services.Logs == nil {
				return nil, false
			}
			return NewLogsScreen(services.Logs), true
		}
		return nil, false
	}
}
