package di

import (
	"github.com/humbertoamdc/torvek-sub000/application/commands"
	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/application/queries"
	"github.com/humbertoamdc/torvek-sub000/infrastructure/config"
	"github.com/humbertoamdc/torvek-sub000/interfaces/http/rest"
	"github.com/humbertoamdc/torvek-sub000/pkg/observability"
	"go.uber.org/zap"
)

// CommandHandlers groups every wired command handler.
type CommandHandlers struct {
	CreateProject   *commands.CreateProjectHandler
	DeleteProject   *commands.DeleteProjectHandler
	CreateQuotation *commands.CreateQuotationHandler
	SubmitQuotation *commands.SubmitQuotationHandler
	DeleteQuotation *commands.DeleteQuotationHandler
	CreateParts     *commands.CreatePartsHandler
	UpdatePart      *commands.UpdatePartHandler
	DeletePart      *commands.DeletePartHandler
	PriceQuotation  *commands.PriceQuotationHandler
	CreateCheckout  *commands.CreateCheckoutHandler
	ConfirmPayment  *commands.ConfirmPaymentHandler
	CreateOrders    *commands.CreateOrdersHandler
	UpdateOrder     *commands.UpdateOrderHandler
}

// QueryHandlers groups every wired query handler.
type QueryHandlers struct {
	ListProjects   *queries.ListProjectsHandler
	ListQuotations *queries.ListQuotationsHandler
	ListParts      *queries.ListPartsHandler
	ListOrders     *queries.ListOrdersHandler
	GetOrder       *queries.GetOrderHandler
}

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Identity ports.IdentityManager
	Notifier ports.Notifier
	Commands *CommandHandlers
	Queries  *QueryHandlers
	Metrics  *observability.Metrics
	Router   *rest.Router
}
