package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the home page and catalog.
	RouteRoot = "/"
	// RouteSignUp is the account creation route.
	RouteSignUp = "/sign-up"
	// RouteSignIn is the sign-in route.
	RouteSignIn = "/sign-in"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteForgotPassword is the forgotten-password information page.
	RouteForgotPassword = "/forgot-password"
	// RoutePurchase is the checkout page.
	RoutePurchase = "/purchase"
	// RouteUpdatePayment is the mailing and payment details page.
	RouteUpdatePayment = "/update-payment"

	// RouteSalesReport is the admin orders table.
	RouteSalesReport = "/sales-report"
	// RouteVehicleInventory is the admin vehicle update route.
	RouteVehicleInventory = "/vehicle-inventory"
	// RouteUpdateUser is the admin user update route.
	RouteUpdateUser = "/update-user"

	// RoutePurchaseInfo receives the JSON purchase.
	RoutePurchaseInfo = "/purchase-info"
	// RouteSavePurchaseInfo receives the JSON address and card save.
	RouteSavePurchaseInfo = "/save-purchase-info"
	// RouteGetData dumps the vehicle catalog.
	RouteGetData = "/get-data"
	// RouteGetOrderData dumps all orders.
	RouteGetOrderData = "/get-order-data"
	// RouteGetUserData dumps a user record.
	RouteGetUserData = "/get-user-data"

	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteStatic serves embedded assets.
	RouteStatic = "/static/*"
)

const (
	redirectSignIn           = RouteSignIn
	redirectSignUp           = RouteSignUp
	redirectVehicleInventory = RouteVehicleInventory
	redirectUpdateUser       = RouteUpdateUser
	redirectUpdatePayment    = RouteUpdatePayment
)

// Response bodies fixed by the checkout page's fetch calls.
const (
	bodySuccess = "success"
	bodyBadData = "bad data"
)
