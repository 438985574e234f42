package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cryptothud/solana-next-typescript-starter/internal/nft"
)

// Route - экран, на который можно перейти.
type Route string

const (
	RouteMenu    Route = "menu"
	RouteWallet  Route = "wallet"
	RouteGallery Route = "gallery"
	RouteLogs    Route = "logs"
)

// RouterMsg запрашивает переход на другой экран
type RouterMsg struct {
	To Route
}

// Navigate возвращает команду перехода.
func Navigate(route Route) tea.Cmd {
	return func() tea.Msg {
		return RouterMsg{To: route}
	}
}

// BalanceLoadedMsg приходит после запроса баланса.
type BalanceLoadedMsg struct {
	Lamports uint64
	Err      error
}

// NFTsLoadedMsg приходит после загрузки галереи.
type NFTsLoadedMsg struct {
	NFTs []nft.NFT
	Err  error
}

// LogsTickMsg - периодическое обновление экрана логов.
type LogsTickMsg struct{}
