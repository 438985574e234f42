// internal/nft/uri.go
package nft

import "strings"

// knownHosts - хранилища, картинки которых отдаются через прокси.
var knownHosts = []string{
	"arweave.net/",
	"shdw-drive.genesysgo.net/",
	"nftstorage.link/",
}

// NormalizeURI переписывает адрес известного хранилища на proxyBase.
// Пустой proxyBase или неизвестный хост возвращают uri без изменений.
func NormalizeURI(uri, proxyBase string) string {
	if proxyBase == "" {
		return uri
	}
	for _, host := range knownHosts {
		if i := strings.Index(uri, host); i >= 0 {
			path := uri[i+len(host):]
			return strings.TrimRight(proxyBase, "/") + "/" + path
		}
	}
	return uri
}
