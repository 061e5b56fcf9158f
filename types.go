package salamoonder

// TaskType is the challenge-type tag understood by the service.
type TaskType string

const (
	KasadaCaptchaSolver        TaskType = "KasadaCaptchaSolver"
	TwitchCheckIntegrity       TaskType = "Twitch_CheckIntegrity"
	TwitchPublicIntegrity      TaskType = "Twitch_PublicIntegrity"
	TwitchRegisterAccount      TaskType = "Twitch_RegisterAccount"
	IncapsulaReese84Solver     TaskType = "IncapsulaReese84Solver"
	IncapsulaUTMVCSolver       TaskType = "IncapsulaUTMVCSolver"
	AkamaiWebSensorSolver      TaskType = "AkamaiWebSensorSolver"
	AkamaiSBSDSolver           TaskType = "AkamaiSBSDSolver"
	DataDomeInterstitialSolver TaskType = "DataDomeInterstitialSolver"
	DataDomeSliderSolver       TaskType = "DataDomeSliderSolver"
)

// TaskTypes lists every supported challenge type in a stable order.
var TaskTypes = []TaskType{
	KasadaCaptchaSolver,
	TwitchCheckIntegrity,
	TwitchPublicIntegrity,
	TwitchRegisterAccount,
	IncapsulaReese84Solver,
	IncapsulaUTMVCSolver,
	AkamaiWebSensorSolver,
	AkamaiSBSDSolver,
	DataDomeInterstitialSolver,
	DataDomeSliderSolver,
}

// Valid reports whether t is a supported challenge type.
func (t TaskType) Valid() bool {
	_, ok := taskSchemas[t]
	return ok
}

// Task is a typed solve request. The set of implementations is closed:
// one struct per challenge type.
type Task interface {
	Type() TaskType
	params() Params
}

// KasadaTask solves a Kasada challenge from its p.js script URL.
type KasadaTask struct {
	PjsURL string
	CdOnly bool
}

func (KasadaTask) Type() TaskType { return KasadaCaptchaSolver }

func (t KasadaTask) params() Params {
	return Params{"pjs_url": t.PjsURL, "cd_only": t.CdOnly}
}

// TwitchCheckIntegrityTask checks an integrity token.
type TwitchCheckIntegrityTask struct {
	Token string
}

func (TwitchCheckIntegrityTask) Type() TaskType { return TwitchCheckIntegrity }

func (t TwitchCheckIntegrityTask) params() Params {
	return Params{"token": t.Token}
}

// TwitchPublicIntegrityTask produces a public integrity token for an access token.
type TwitchPublicIntegrityTask struct {
	AccessToken string
	Proxy       string
	DeviceID    string
	ClientID    string
}

func (TwitchPublicIntegrityTask) Type() TaskType { return TwitchPublicIntegrity }

func (t TwitchPublicIntegrityTask) params() Params {
	p := Params{"access_token": t.AccessToken}
	p.setIf("proxy", t.Proxy)
	p.setIf("device_id", t.DeviceID)
	p.setIf("client_id", t.ClientID)
	return p
}

// TwitchRegisterAccountTask registers an account for an email address.
type TwitchRegisterAccountTask struct {
	Email string
}

func (TwitchRegisterAccountTask) Type() TaskType { return TwitchRegisterAccount }

func (t TwitchRegisterAccountTask) params() Params {
	return Params{"email": t.Email}
}

// IncapsulaReese84Task generates a reese84 token for a website.
type IncapsulaReese84Task struct {
	Website       string
	SubmitPayload bool
	UserAgent     string
}

func (IncapsulaReese84Task) Type() TaskType { return IncapsulaReese84Solver }

func (t IncapsulaReese84Task) params() Params {
	p := Params{"website": t.Website, "submit_payload": t.SubmitPayload}
	p.setIf("user_agent", t.UserAgent)
	return p
}

// IncapsulaUTMVCTask generates a ___utmvc cookie for a website.
type IncapsulaUTMVCTask struct {
	Website   string
	UserAgent string
}

func (IncapsulaUTMVCTask) Type() TaskType { return IncapsulaUTMVCSolver }

func (t IncapsulaUTMVCTask) params() Params {
	p := Params{"website": t.Website}
	p.setIf("user_agent", t.UserAgent)
	return p
}

// AkamaiWebSensorTask generates one Akamai sensor payload. Count is the
// zero-based sensor index and Data the value returned by the previous round.
type AkamaiWebSensorTask struct {
	URL       string
	Abck      string
	Bmsz      string
	Script    string
	SensorURL string
	UserAgent string
	Count     int
	Data      string
}

func (AkamaiWebSensorTask) Type() TaskType { return AkamaiWebSensorSolver }

func (t AkamaiWebSensorTask) params() Params {
	p := Params{
		"url":        t.URL,
		"abck":       t.Abck,
		"bmsz":       t.Bmsz,
		"script":     t.Script,
		"sensor_url": t.SensorURL,
		"count":      t.Count,
		"data":       t.Data,
	}
	p.setIf("user_agent", t.UserAgent)
	return p
}

// AkamaiSBSDTask generates an Akamai sbsd payload.
type AkamaiSBSDTask struct {
	URL       string
	Cookie    string
	SBSDURL   string
	Script    string
	UserAgent string
}

func (AkamaiSBSDTask) Type() TaskType { return AkamaiSBSDSolver }

func (t AkamaiSBSDTask) params() Params {
	p := Params{
		"url":      t.URL,
		"cookie":   t.Cookie,
		"sbsd_url": t.SBSDURL,
		"script":   t.Script,
	}
	p.setIf("user_agent", t.UserAgent)
	return p
}

// DataDomeInterstitialTask solves a DataDome interstitial (device check) page.
type DataDomeInterstitialTask struct {
	CaptchaURL  string
	UserAgent   string
	CountryCode string
}

func (DataDomeInterstitialTask) Type() TaskType { return DataDomeInterstitialSolver }

func (t DataDomeInterstitialTask) params() Params {
	return dataDomeParams(t.CaptchaURL, t.UserAgent, t.CountryCode)
}

// DataDomeSliderTask solves a DataDome slider captcha.
type DataDomeSliderTask struct {
	CaptchaURL  string
	UserAgent   string
	CountryCode string
}

func (DataDomeSliderTask) Type() TaskType { return DataDomeSliderSolver }

func (t DataDomeSliderTask) params() Params {
	return dataDomeParams(t.CaptchaURL, t.UserAgent, t.CountryCode)
}

func dataDomeParams(captchaURL, userAgent, countryCode string) Params {
	p := Params{"captcha_url": captchaURL, "country_code": countryCode}
	p.setIf("user_agent", userAgent)
	return p
}

// AkamaiSensorSolution is the decoded solution of an AkamaiWebSensorSolver task.
type AkamaiSensorSolution struct {
	Payload   string `json:"payload"`
	Data      string `json:"data"`
	UserAgent string `json:"user-agent"`
}

// SBSDSolution is the decoded solution of an AkamaiSBSDSolver task.
type SBSDSolution struct {
	Payload   string `json:"payload"`
	UserAgent string `json:"user-agent"`
}
