package macros

// ViewTypes is the built-in allow-list of view type names. A type
// qualifies when its name starts with one of them.
var ViewTypes = []string{
	"UIView", "UILabel", "UIButton", "UIImageView", "UITextField",
	"UITextView", "UITableView", "UICollectionView", "UIScrollView",
	"UIStackView", "UISwitch", "UISlider", "UIProgressView",
	"UISegmentedControl", "UIPickerView", "UIDatePicker",
	"UIActivityIndicatorView", "UIVisualEffectView", "UISearchBar",
	"UIToolbar", "UITabBar", "UINavigationBar", "UIPageControl",
	"WKWebView", "MKMapView", "SKView", "GLKView", "MTKView",
}
