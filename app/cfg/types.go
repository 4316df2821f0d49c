package cfg

type Cfg struct {
	// Application configuration
	SourcesDir  string
	DataDir     string
	Port        string
	WorkerCount int

	// Refresh behavior
	SchedulerInterval int
	FetchConcurrency  int

	// Translation
	TranslatorURL     string
	TranslatorTimeout int
	DisplayLanguage   string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
