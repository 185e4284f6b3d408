package transit

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// SignPath appends the developer id and an HMAC-SHA1 signature to a request
// path+query. The canonical string the signature covers is the path+query
// with devid already appended; the signature parameter must come last. The
// scheme is positional, so the construction order here is load-bearing.
func SignPath(pathAndQuery, devID, key string) string {
	sep := "?"
	if strings.Contains(pathAndQuery, "?") {
		sep = "&"
	}
	canonical := pathAndQuery + sep + "devid=" + devID

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(canonical))
	sig := strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))

	return canonical + "&signature=" + sig
}
