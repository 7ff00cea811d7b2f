package tencentcloud

import (
	"strings"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
)

// Account holds the API credentials shared by the Tencent Cloud product clients
type Account struct {
	SecretID  string
	SecretKey string
	Region    string
}

// Credential returns the SDK credential for the account
func (a Account) Credential() *common.Credential {
	return common.NewCredential(a.SecretID, a.SecretKey)
}

// ClientProfile returns an SDK client profile.
// An empty endpoint keeps the product default. An endpoint given as a URL
// ("http://127.0.0.1:9000") also sets the request scheme.
func ClientProfile(endpoint string) *profile.ClientProfile {
	cpf := profile.NewClientProfile()
	if endpoint == "" {
		return cpf
	}
	if scheme, host, ok := strings.Cut(endpoint, "://"); ok {
		cpf.HttpProfile.Scheme = strings.ToUpper(scheme)
		endpoint = host
	}
	cpf.HttpProfile.Endpoint = strings.TrimRight(endpoint, "/")
	return cpf
}
