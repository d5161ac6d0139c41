package release

// CheckInput параметры проверки обновления из пути запроса
type CheckInput struct {
	Channel         string `path:"channel" doc:"Update channel"`
	Version         string `path:"version" doc:"Current client version"`
	Platform        string `path:"platform" doc:"Client platform"`
	PlatformVersion string `path:"platform_version" doc:"Platform version"`
	Test            string `path:"test" enum:"testok,testno" doc:"Whether the client accepts test builds"`
	UniqueID        string `path:"unique_id" doc:"MD5 of the client machine id"`
}

type CheckOutput struct {
	Body CheckResponse
}

// CheckResponse ответ проверки; без url обновления нет
type CheckResponse struct {
	Version  string `json:"version" doc:"Latest version for the channel"`
	URL      string `json:"url,omitempty" doc:"Download URL of the update package"`
	Hash     string `json:"hash,omitempty" doc:"MD5 of the update package"`
	Required bool   `json:"required" doc:"Whether the update is mandatory"`
	MoreInfo string `json:"more_info,omitempty" doc:"Release notes URL"`
	Channel  string `json:"channel,omitempty"`
}
