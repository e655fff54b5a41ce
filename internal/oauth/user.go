package oauth

// User is the normalized identity returned by a login.
//
// UUID is qualified by the source name (e.g. "github_42") so it is unique
// across providers and stable for the same end user at one provider.
type User struct {
	UUID       string         `json:"uuid"`
	Username   string         `json:"username"`
	Nickname   string         `json:"nickname,omitempty"`
	Avatar     string         `json:"avatar,omitempty"`
	Blog       string         `json:"blog,omitempty"`
	Company    string         `json:"company,omitempty"`
	Location   string         `json:"location,omitempty"`
	Email      string         `json:"email,omitempty"`
	Mobile     string         `json:"mobile,omitempty"`
	Remark     string         `json:"remark,omitempty"`
	Gender     Gender         `json:"gender"`
	Source     string         `json:"source"`
	Token      *Token         `json:"token,omitempty"`
	Raw        map[string]any `json:"raw,omitempty"`
	ServiceURL string         `json:"service_url,omitempty"`
}
