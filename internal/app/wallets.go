// internal/app/wallets.go
package app

import (
	"fmt"
	"sort"

	"github.com/cryptothud/solana-next-typescript-starter/internal/wallet"
)

// SelectWallet загружает wallets файл и возвращает кошелек name.
// Пустое имя - первый кошелек по алфавиту.
func SelectWallet(path, name string) (string, *wallet.Keypair, error) {
	wallets, err := wallet.LoadWallets(path)
	if err != nil {
		return "", nil, err
	}
	if name != "" {
		kp, ok := wallets[name]
		if !ok {
			return "", nil, fmt.Errorf("wallet %q not found in %s", name, path)
		}
		return name, kp, nil
	}

	names := make([]string, 0, len(wallets))
	for n := range wallets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names[0], wallets[names[0]], nil
}
