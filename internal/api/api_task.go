package api

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/mo"

	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/biz/taskdetail"
	"github.com/jobs/dcron/internal/dto/mapper"
	"github.com/jobs/dcron/internal/dto/request"
	"github.com/jobs/dcron/internal/dto/response"
)

type ITaskAPI interface {
	// List 获取任务列表
	// 可按状态和节点过滤
	// @GET(api/v1/tasks)
	List(ctx *gin.Context, req request.GetTasksRequest) ([]response.TaskResponse, error)

	// Get 获取任务详情
	// @GET(api/v1/tasks/{id})
	Get(ctx *gin.Context, id string) (response.TaskResponse, error)

	// Start 立即执行一次
	// @POST(api/v1/tasks/{id}/start)
	Start(ctx *gin.Context, id string) (response.MessageResponse, error)

	// Stop 停止任务, 运行中的任务由持有节点取消
	// @POST(api/v1/tasks/{id}/stop)
	Stop(ctx *gin.Context, id string) (response.MessageResponse, error)

	// EditCron 修改cron表达式
	// @PUT(api/v1/tasks/{id}/cron)
	EditCron(ctx *gin.Context, id string, req request.EditCronRequest) (response.TaskResponse, error)

	// Details 获取任务的执行记录
	// @GET(api/v1/tasks/{id}/details)
	Details(ctx *gin.Context, id string, req request.ListTaskDetailsRequest) (response.PageResponse[response.TaskDetailResponse], error)
}

var _ ITaskAPI = (*TaskAPI)(nil)

type TaskAPI struct {
	control Control
}

func NewTaskAPI(control Control) *TaskAPI {
	return &TaskAPI{control: control}
}

func (a *TaskAPI) List(ctx *gin.Context, req request.GetTasksRequest) ([]response.TaskResponse, error) {
	filter := &task.TaskFilter{}
	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, badRequest("unknown status %q", req.Status)
		}
		filter.Status = mo.Some(req.Status)
	}
	if req.NodeID != "" {
		filter.NodeID = mo.Some(req.NodeID)
	}

	tasks, err := a.control.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	return mapper.ToTaskListResponse(tasks), nil
}

func (a *TaskAPI) Get(ctx *gin.Context, id string) (response.TaskResponse, error) {
	taskID, err := parseID(id)
	if err != nil {
		return response.TaskResponse{}, err
	}
	t, err := a.control.GetTask(ctx, taskID)
	if err != nil {
		return response.TaskResponse{}, err
	}
	return mapper.ToTaskResponse(t), nil
}

func (a *TaskAPI) Start(ctx *gin.Context, id string) (response.MessageResponse, error) {
	taskID, err := parseID(id)
	if err != nil {
		return response.MessageResponse{}, err
	}
	if err := a.control.StartNow(ctx, taskID); err != nil {
		return response.MessageResponse{}, err
	}
	return response.MessageResponse{Message: "task scheduled to start"}, nil
}

func (a *TaskAPI) Stop(ctx *gin.Context, id string) (response.MessageResponse, error) {
	taskID, err := parseID(id)
	if err != nil {
		return response.MessageResponse{}, err
	}
	if err := a.control.RequestStop(ctx, taskID); err != nil {
		return response.MessageResponse{}, err
	}
	return response.MessageResponse{Message: "stop requested"}, nil
}

func (a *TaskAPI) EditCron(ctx *gin.Context, id string, req request.EditCronRequest) (response.TaskResponse, error) {
	taskID, err := parseID(id)
	if err != nil {
		return response.TaskResponse{}, err
	}
	t, err := a.control.EditCron(ctx, taskID, req.CronExpression)
	if err != nil {
		return response.TaskResponse{}, err
	}
	return mapper.ToTaskResponse(t), nil
}

func (a *TaskAPI) Details(ctx *gin.Context, id string, req request.ListTaskDetailsRequest) (response.PageResponse[response.TaskDetailResponse], error) {
	var page response.PageResponse[response.TaskDetailResponse]
	taskID, err := parseID(id)
	if err != nil {
		return page, err
	}

	status := mo.None[taskdetail.DetailStatus]()
	if req.Status != "" {
		status = mo.Some(req.Status)
	}
	limit := req.Limit
	if limit == 0 {
		limit = 20
	}

	details, total, err := a.control.ListTaskDetails(ctx, taskID, status, req.Offset, limit)
	if err != nil {
		return page, err
	}
	page.Items = mapper.ToTaskDetailListResponse(details)
	page.Total = total
	page.Offset = req.Offset
	page.Limit = limit
	return page, nil
}
