package controller

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/greenplate/ordering/catalog/internal/client"
	"github.com/greenplate/ordering/catalog/internal/otel"
	inHttp "github.com/greenplate/ordering/internal/http"
)

type CatalogController struct {
	client client.CatalogClient
}

func AttachCatalogController(router *mux.Router, client client.CatalogClient) {
	controller := CatalogController{client: client}
	router.HandleFunc("/menu", controller.Menu).Methods(http.MethodGet)
}

func (t CatalogController) Menu(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController Menu")
	defer span.End()

	meals := t.client.Meals(c)
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "menu",
		"data":       map[string]interface{}{"meals": meals},
	})
}
