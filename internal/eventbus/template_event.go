package eventbus

type TemplateEventType string

const (
	TemplateEventAnalysisRequested TemplateEventType = "AnalysisRequested"
	TemplateEventAnalyzed          TemplateEventType = "Analyzed"
)

type TemplateEvent struct {
	Type       TemplateEventType
	TemplateID string
	FileURL    string
	Content    []byte // 上传的原始文件内容，可为空
}

type TemplateEventHandler = Handler[TemplateEvent]
type TemplateEventBus = Bus[TemplateEventType, TemplateEvent]

func NewTemplateEventBus() *TemplateEventBus {
	return NewBus[TemplateEventType, TemplateEvent]()
}
