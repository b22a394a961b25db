package models

// NotifyMode selects how the audience of an activity type is resolved.
type NotifyMode string

const (
	ModeIndividual NotifyMode = "INDIVIDUAL"
	ModeGroup      NotifyMode = "GROUP"
)

// ActivityTypeMeta is the notification policy of one activity type.
type ActivityTypeMeta struct {
	Notify                  bool           `yaml:"notify"`
	Mode                    NotifyMode     `yaml:"type"`
	NotifyGroup             []WatcherGroup `yaml:"notifyGroup"`
	ResourceURL             string         `yaml:"resourceUrl"`
	TargetResourceURL       string         `yaml:"targetResourceUrl"`
	Email                   bool           `yaml:"email"`
	EmailTemplate           string         `yaml:"emailtemplateUrl"`
	RequiredPermissionCheck bool           `yaml:"requiredPermissionCheck"`
	NotifyPageOnly          bool           `yaml:"notifyPageOnly"`
	NotifyPageRefresh       bool           `yaml:"notifyPageRefresh"`
}
