package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/pkg/idgen"
	"github.com/maitrisea/backend/internal/repository"
	"github.com/maitrisea/backend/internal/utils"
)

// UpdateProjectRequest 修改项目头信息，空指针表示不修改
type UpdateProjectRequest struct {
	ProjectName    *string                `json:"project_name"`
	ClientName     *string                `json:"client_name"`
	ClientEmail    *string                `json:"client_email"`
	ProjectAddress *string                `json:"project_address"`
	StatusGlobal   *string                `json:"status_global"`
	Category       *model.ProjectCategory `json:"category"`
	AssignedUsers  []string               `json:"assigned_users"`
	ImageURL       *string                `json:"image_url"`
}

// StakeholderRequest 新增或修改干系人
type StakeholderRequest struct {
	Role               *string `json:"role"`
	CompanyName        *string `json:"company_name"`
	RepresentativeName *string `json:"representative_name"`
	Email              *string `json:"email"`
	Phone              *string `json:"phone"`
}

// AddReportRequest 新增现场报告
type AddReportRequest struct {
	VisitDate string `json:"visit_date"`
}

// UpdateReportRequest 修改现场报告，空指针表示不修改
type UpdateReportRequest struct {
	VisitDate       *string                 `json:"visit_date"`
	Summary         *string                 `json:"summary"`
	LotObservations *[]model.LotObservation `json:"lot_observations"`
	Attendances     *[]map[string]any       `json:"attendances"`
	Status          *model.ReportStatus     `json:"status"`
}

// ProjectDetail 项目详情
type ProjectDetail struct {
	Project           model.Project        `json:"project"`
	Fields            []model.ProjectField `json:"fields"`
	ActiveTemplateIDs []string             `json:"active_template_ids"`
	Stakeholders      []model.Stakeholder  `json:"stakeholders"`
	TradeLots         []model.TradeLot     `json:"trade_lots"`
	SiteReports       []model.SiteReport   `json:"site_reports"`
	Comments          []model.Comment      `json:"comments"`
}

// ProjectService 项目头信息、评论、干系人、分包与现场报告
type ProjectService struct {
	ws *repository.Workspace
	d  *deriver
}

func NewProjectService(ws *repository.Workspace, opts Options) *ProjectService {
	return &ProjectService{ws: ws, d: newDeriver(opts)}
}

// List 获取项目列表，最新创建的在前
func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		projects = append(projects, snap.Projects...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

// Get 获取项目详情
func (s *ProjectService) Get(ctx context.Context, id string) (*ProjectDetail, error) {
	var detail ProjectDetail
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		p := snap.FindProject(id)
		if p == nil {
			return ErrProjectNotFound
		}
		detail.Project = *p
		detail.Fields = snap.ProjectFieldsOf(id)
		for _, l := range snap.TemplateLinks {
			if l.ProjectID == id && l.Status == model.LinkActive {
				detail.ActiveTemplateIDs = append(detail.ActiveTemplateIDs, l.TemplateID)
			}
		}
		for _, st := range snap.Stakeholders {
			if st.ProjectID == id {
				detail.Stakeholders = append(detail.Stakeholders, st)
			}
		}
		for _, l := range snap.TradeLots {
			if l.ProjectID == id {
				detail.TradeLots = append(detail.TradeLots, l)
			}
		}
		for _, r := range snap.SiteReports {
			if r.ProjectID == id {
				detail.SiteReports = append(detail.SiteReports, r)
			}
		}
		detail.Comments = projectComments(snap, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(detail.SiteReports, func(i, j int) bool {
		return detail.SiteReports[i].ReportNumber > detail.SiteReports[j].ReportNumber
	})
	return &detail, nil
}

// Update 修改项目头信息
func (s *ProjectService) Update(ctx context.Context, id string, req UpdateProjectRequest) (*model.Project, error) {
	if req.Category != nil && *req.Category != model.CategoryProspect && *req.Category != model.CategoryClient {
		return nil, fmt.Errorf("%w: category %q", ErrInvalidStatus, *req.Category)
	}
	var project model.Project
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		p := snap.FindProject(id)
		if p == nil {
			return ErrProjectNotFound
		}
		if req.ProjectName != nil {
			p.ProjectName = *req.ProjectName
		}
		if req.ClientName != nil {
			p.ClientName = *req.ClientName
		}
		if req.ClientEmail != nil {
			p.ClientEmail = *req.ClientEmail
		}
		if req.ProjectAddress != nil {
			p.ProjectAddress = *req.ProjectAddress
		}
		if req.StatusGlobal != nil {
			p.StatusGlobal = *req.StatusGlobal
		}
		if req.Category != nil {
			p.Category = *req.Category
		}
		if req.AssignedUsers != nil {
			p.AssignedUsers = model.UniqueStrings(req.AssignedUsers)
		}
		if req.ImageURL != nil {
			p.ImageURL = *req.ImageURL
		}
		p.UpdatedAt = s.d.now()
		project = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// SetDriveLink 解析 Google Drive 链接并保存文件夹 ID，空链接清除关联
func (s *ProjectService) SetDriveLink(ctx context.Context, id, rawURL string) (*model.Project, error) {
	link, err := utils.ExtractDriveID(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDriveLink, rawURL)
	}
	var project model.Project
	err = s.ws.Update(ctx, func(snap *model.Snapshot) error {
		p := snap.FindProject(id)
		if p == nil {
			return ErrProjectNotFound
		}
		p.DriveFolderID, p.DriveFolderURL = "", ""
		if link != nil {
			p.DriveFolderID = link.ID
			p.DriveFolderURL = link.URL
		}
		p.UpdatedAt = s.d.now()
		project = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// AddComment 新增评论
func (s *ProjectService) AddComment(ctx context.Context, projectID, authorID, body string, mentions []string) (*model.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment body is empty", ErrInvalidInput)
	}
	var comment model.Comment
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		comment = model.Comment{
			ID:             s.d.newID(idgen.PrefixComment),
			WorkspaceID:    s.d.workspaceID,
			ProjectID:      projectID,
			AuthorUserID:   authorID,
			Body:           body,
			MentionUserIDs: model.UniqueStrings(mentions),
			CreatedAt:      s.d.now(),
		}
		snap.Comments = append(snap.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments 获取项目评论，最新的在前
func (s *ProjectService) ListComments(ctx context.Context, projectID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		comments = projectComments(snap, projectID)
		return nil
	})
	return comments, err
}

func projectComments(snap *model.Snapshot, projectID string) []model.Comment {
	var comments []model.Comment
	for _, c := range snap.Comments {
		if c.ProjectID == projectID {
			comments = append(comments, c)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments
}

func applyStakeholder(st *model.Stakeholder, req StakeholderRequest) {
	if req.Role != nil {
		st.Role = *req.Role
	}
	if req.CompanyName != nil {
		st.CompanyName = *req.CompanyName
	}
	if req.RepresentativeName != nil {
		st.RepresentativeName = *req.RepresentativeName
	}
	if req.Email != nil {
		st.Email = *req.Email
	}
	if req.Phone != nil {
		st.Phone = *req.Phone
	}
}

// AddStakeholder 新增干系人
func (s *ProjectService) AddStakeholder(ctx context.Context, projectID string, req StakeholderRequest) (*model.Stakeholder, error) {
	var st model.Stakeholder
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		st = model.Stakeholder{ID: s.d.newID(idgen.PrefixStakeholder), ProjectID: projectID}
		applyStakeholder(&st, req)
		snap.Stakeholders = append(snap.Stakeholders, st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateStakeholder 修改干系人
func (s *ProjectService) UpdateStakeholder(ctx context.Context, id string, req StakeholderRequest) (*model.Stakeholder, error) {
	var st model.Stakeholder
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		for i := range snap.Stakeholders {
			if snap.Stakeholders[i].ID == id {
				applyStakeholder(&snap.Stakeholders[i], req)
				st = snap.Stakeholders[i]
				return nil
			}
		}
		return ErrStakeholderNotFound
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// DeleteStakeholder 删除干系人
func (s *ProjectService) DeleteStakeholder(ctx context.Context, id string) error {
	return s.ws.Update(ctx, func(snap *model.Snapshot) error {
		for i := range snap.Stakeholders {
			if snap.Stakeholders[i].ID == id {
				snap.Stakeholders = append(snap.Stakeholders[:i:i], snap.Stakeholders[i+1:]...)
				return nil
			}
		}
		return ErrStakeholderNotFound
	})
}

// AddTradeLot 新增分包
func (s *ProjectService) AddTradeLot(ctx context.Context, projectID, name string) (*model.TradeLot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: lot name is empty", ErrInvalidInput)
	}
	var lot model.TradeLot
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		s.d.addTradeLots(snap, projectID, []string{name})
		lot = snap.TradeLots[len(snap.TradeLots)-1]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

// DeleteTradeLot 删除分包
func (s *ProjectService) DeleteTradeLot(ctx context.Context, id string) error {
	return s.ws.Update(ctx, func(snap *model.Snapshot) error {
		for i := range snap.TradeLots {
			if snap.TradeLots[i].ID == id {
				snap.TradeLots = append(snap.TradeLots[:i:i], snap.TradeLots[i+1:]...)
				return nil
			}
		}
		return ErrTradeLotNotFound
	})
}

// AddReport 新增现场报告，编号为项目已有报告数加一，并追加到时间线末尾
func (s *ProjectService) AddReport(ctx context.Context, projectID string, req AddReportRequest) (*model.SiteReport, error) {
	var report model.SiteReport
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		count := 0
		for _, r := range snap.SiteReports {
			if r.ProjectID == projectID {
				count++
			}
		}
		now := s.d.now()
		visitDate := req.VisitDate
		if visitDate == "" {
			visitDate = now.Format("2006-01-02")
		}
		report = model.SiteReport{
			ID:              s.d.newID(idgen.PrefixReport),
			ProjectID:       projectID,
			ReportNumber:    count + 1,
			VisitDate:       visitDate,
			LotObservations: []model.LotObservation{},
			Attendances:     []map[string]any{},
			Status:          model.ReportDraft,
			CreatedAt:       now,
		}
		snap.SiteReports = append(snap.SiteReports, report)
		s.d.appendItem(snap, projectID, model.ItemTypeReport, report.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// UpdateReport 修改现场报告
func (s *ProjectService) UpdateReport(ctx context.Context, id string, req UpdateReportRequest) (*model.SiteReport, error) {
	if req.Status != nil && *req.Status != model.ReportDraft && *req.Status != model.ReportSent {
		return nil, fmt.Errorf("%w: report status %q", ErrInvalidStatus, *req.Status)
	}
	var report model.SiteReport
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		r := snap.FindReport(id)
		if r == nil {
			return ErrReportNotFound
		}
		if req.VisitDate != nil {
			r.VisitDate = *req.VisitDate
		}
		if req.Summary != nil {
			r.Summary = *req.Summary
		}
		if req.LotObservations != nil {
			r.LotObservations = *req.LotObservations
		}
		if req.Attendances != nil {
			r.Attendances = *req.Attendances
		}
		if req.Status != nil {
			r.Status = *req.Status
		}
		report = *r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}
