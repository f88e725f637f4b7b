package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mintbay/nft-marketplace/internal/custodian"
	"github.com/mintbay/nft-marketplace/internal/ledger"
	"github.com/mintbay/nft-marketplace/internal/marketplace"
	"github.com/mintbay/nft-marketplace/internal/repository"
	"go.uber.org/zap"
)

const walletHeader = "X-Wallet-Address"

type Server struct {
	registry    marketplace.Registry
	listingRepo repository.ListingRepository
	directory   *custodian.Directory
	funds       ledger.Ledger
}

func NewServer(
	registry marketplace.Registry,
	listingRepo repository.ListingRepository,
	directory *custodian.Directory,
	funds ledger.Ledger,
) Server {
	return Server{registry, listingRepo, directory, funds}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHomepage).Methods("GET")

	r.HandleFunc("/fee", s.handleGetFee).Methods("GET")
	r.HandleFunc("/fee", s.handleSetFee).Methods("PUT")

	r.HandleFunc("/listings", s.handleBrowseListings).Methods("GET")
	r.HandleFunc("/listings", s.handleCreateListing).Methods("POST")
	r.HandleFunc("/listings/{contract}/{tokenId}", s.handleGetListing).Methods("GET")
	r.HandleFunc("/listings/{contract}/{tokenId}", s.handleUnlist).Methods("DELETE")
	r.HandleFunc("/listings/{contract}/{tokenId}/price", s.handleChangePrice).Methods("PUT")
	r.HandleFunc("/listings/{contract}/{tokenId}/purchase", s.handleBuy).Methods("POST")

	r.HandleFunc("/collections", s.handleCreateCollection).Methods("POST")
	r.HandleFunc("/collections/{contract}/tokens", s.handleMint).Methods("POST")
	r.HandleFunc("/collections/{contract}/tokens/{tokenId}/owner", s.handleGetTokenOwner).Methods("GET")

	r.HandleFunc("/accounts/{address}/balance", s.handleGetBalance).Methods("GET")
	r.HandleFunc("/accounts/{address}/deposit", s.handleDeposit).Methods("POST")

	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "NFT Marketplace")
}

func (s Server) handleGetFee(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]uint{"feePercentage": s.registry.FeePercentage()})
}

func (s Server) handleSetFee(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Percentage uint `json:"percentage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.registry.SetFeePercentage(caller(r), body.Percentage); err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, map[string]uint{"feePercentage": s.registry.FeePercentage()})
}

func (s Server) handleBrowseListings(w http.ResponseWriter, r *http.Request) {
	size, page := pagination(r)

	var (
		listings interface{}
		total    int64
		err      error
	)

	if seller := r.URL.Query().Get("seller"); seller != "" {
		listings, total, err = s.listingRepo.GetListingsBySeller(seller, size, page)
	} else {
		listings, total, err = s.listingRepo.GetActiveListings(size, page)
	}

	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Listings not available")
		http.Error(w, "Listings not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	writeJson(w, http.StatusOK, listings)
}

func (s Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Contract string `json:"contract"`
		TokenId  uint64 `json:"tokenId"`
		Price    string `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	price, ok := new(big.Int).SetString(body.Price, 10)
	if !ok {
		http.Error(w, "Invalid price", http.StatusBadRequest)
		return
	}

	if err := s.registry.List(caller(r), body.Contract, body.TokenId, price); err != nil {
		writeError(w, err)
		return
	}

	writeListing(w, http.StatusCreated, body.Contract, s.registry.GetListing(body.Contract, body.TokenId))
}

func (s Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	contract, _ := mux.Vars(r)["contract"]
	tokenId, err := getTokenId(r)
	if err != nil {
		http.Error(w, "Invalid token id", http.StatusBadRequest)
		return
	}

	writeListing(w, http.StatusOK, contract, s.registry.GetListing(contract, tokenId))
}

func (s Server) handleChangePrice(w http.ResponseWriter, r *http.Request) {
	contract, _ := mux.Vars(r)["contract"]
	tokenId, err := getTokenId(r)
	if err != nil {
		http.Error(w, "Invalid token id", http.StatusBadRequest)
		return
	}

	var body struct {
		Price string `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	price, ok := new(big.Int).SetString(body.Price, 10)
	if !ok {
		http.Error(w, "Invalid price", http.StatusBadRequest)
		return
	}

	if err := s.registry.ChangePrice(caller(r), contract, tokenId, price); err != nil {
		writeError(w, err)
		return
	}

	writeListing(w, http.StatusOK, contract, s.registry.GetListing(contract, tokenId))
}

func (s Server) handleUnlist(w http.ResponseWriter, r *http.Request) {
	contract, _ := mux.Vars(r)["contract"]
	tokenId, err := getTokenId(r)
	if err != nil {
		http.Error(w, "Invalid token id", http.StatusBadRequest)
		return
	}

	if err := s.registry.Unlist(caller(r), contract, tokenId); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	contract, _ := mux.Vars(r)["contract"]
	tokenId, err := getTokenId(r)
	if err != nil {
		http.Error(w, "Invalid token id", http.StatusBadRequest)
		return
	}

	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	value, ok := new(big.Int).SetString(body.Value, 10)
	if !ok {
		http.Error(w, "Invalid value", http.StatusBadRequest)
		return
	}

	if err := s.registry.Buy(caller(r), contract, tokenId, value); err != nil {
		writeError(w, err)
		return
	}

	writeListing(w, http.StatusOK, contract, s.registry.GetListing(contract, tokenId))
}

func (s Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Contract string `json:"contract"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Contract == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := s.directory.AddCollection(body.Contract); err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusCreated, map[string]string{"contract": body.Contract})
}

func (s Server) handleMint(w http.ResponseWriter, r *http.Request) {
	contract, _ := mux.Vars(r)["contract"]

	var body struct {
		Owner   string `json:"owner"`
		TokenId uint64 `json:"tokenId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Owner == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := s.directory.Token(contract)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := token.Mint(body.Owner, body.TokenId); err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusCreated, map[string]interface{}{
		"contract": contract,
		"tokenId":  body.TokenId,
		"owner":    body.Owner,
	})
}

func (s Server) handleGetTokenOwner(w http.ResponseWriter, r *http.Request) {
	contract, _ := mux.Vars(r)["contract"]
	tokenId, err := getTokenId(r)
	if err != nil {
		http.Error(w, "Invalid token id", http.StatusBadRequest)
		return
	}

	cust, err := s.directory.Custodian(contract)
	if err != nil {
		writeError(w, err)
		return
	}

	owner, err := cust.OwnerOf(tokenId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, map[string]string{"owner": owner})
}

func (s Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	address, _ := mux.Vars(r)["address"]

	writeJson(w, http.StatusOK, map[string]string{
		"address": address,
		"balance": s.funds.BalanceOf(address).String(),
	})
}

func (s Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	address, _ := mux.Vars(r)["address"]

	var body struct {
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	amount, ok := new(big.Int).SetString(body.Amount, 10)
	if !ok {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	if err := s.funds.Deposit(address, amount); err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, map[string]string{
		"address": address,
		"balance": s.funds.BalanceOf(address).String(),
	})
}

func caller(r *http.Request) string {
	return r.Header.Get(walletHeader)
}

func getTokenId(r *http.Request) (uint64, error) {
	tokenId, ok := mux.Vars(r)["tokenId"]
	if !ok {
		return 0, errors.New("invalid parameters")
	}

	return strconv.ParseUint(tokenId, 10, 64)
}

func pagination(r *http.Request) (size, page int) {
	size, page = 20, 1
	if value, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && value > 0 {
		size = value
	}
	if value, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && value > 0 {
		page = value
	}

	return size, page
}

type listingResponse struct {
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
	Seller   string `json:"seller"`
	Price    string `json:"price"`
	Active   bool   `json:"active"`
}

func writeListing(w http.ResponseWriter, status int, contract string, listing marketplace.Listing) {
	price := "0"
	if listing.Price != nil {
		price = listing.Price.String()
	}

	writeJson(w, status, listingResponse{
		Contract: contract,
		TokenId:  listing.TokenId,
		Seller:   listing.Seller,
		Price:    price,
		Active:   listing.Active,
	})
}

func writeJson(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, marketplace.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, marketplace.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, marketplace.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, marketplace.ErrInvalidState):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, marketplace.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, custodian.ErrCollectionNotFound), errors.Is(err, custodian.ErrTokenNotFound):
		status = http.StatusNotFound
	case errors.Is(err, custodian.ErrCollectionExists), errors.Is(err, custodian.ErrTokenExists):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrInvalidAmount):
		status = http.StatusBadRequest
	}

	http.Error(w, err.Error(), status)
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = fmt.Fprintf(w, "Page not found")
	})
}
