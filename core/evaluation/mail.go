package evaluation

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/person"
)

const (
	FeedbackSubject  = "تقرير التغذية الراجعة / Feedback Report"
	feedbackTemplate = "feedback_report"

	defaultSchoolAr = "المدرسة"
	defaultSchoolEn = "School"
)

var errNoRecipients = errors.New("at least one recipient is required")

const arabicBody = `السلام عليكم،

أسعد الله أوقاتكم بكل خير، مُرفق إليكم تقرير التغذية الراجعة للحصة التي تمت مشاهدتها مؤخرًا. نأمل أن تجدوا التقرير مفيدًا في تسليط الضوء على نقاط القوة والمجالات التي بحاجة إلى تحسين، وذلك لتحقيق أفضل أداء في المستقبل.

يرجى الاطلاع على التقرير وعدم التردد بإرسال أية ملاحظات أو استفسارات لديكم بشأنه. إن تعاونكم يساعد بالارتقاء بمستوى الأداء الأكاديمي وتقديم بيئة تعليمية متميزة.

رابط التقرير:
%s

شاكرين لكم حسن تعاونكم، ونسأل الله تعالى لكم دوام التوافيق والنجاح.
مع كامل الاحترام والتقدير،
إدارة %s – %s`

const englishBody = `Greetings,

Attached is the feedback report for the session that was recently observed. We hope you find the report useful in highlighting the strengths and areas that need improvement, to achieve the best performance in the future.

Please review the report and do not hesitate to send any comments or inquiries you may have regarding it. Your cooperation greatly contributes to enhancing academic performance and providing an exceptional learning environment.

Report Link:
%s

We wish you ongoing success and prosperity.
Sincerely,
%s Administration.`

// FeedbackDraft is the bilingual mail sent to a teacher once their report is published.
type FeedbackDraft struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Arabic    string `json:"-"`
	English   string `json:"-"`
	ReportURL string `json:"reportURL"`
}

func ComposeFeedback(ev Evaluation) FeedbackDraft {
	schoolAr, schoolEn := ev.MainInformation.SchoolName, ev.MainInformation.SchoolName
	if schoolAr == "" {
		schoolAr, schoolEn = defaultSchoolAr, defaultSchoolEn
	}
	ar := fmt.Sprintf(arabicBody, ev.PDFURL, person.GroupLabel(ev.Group), schoolAr)
	en := fmt.Sprintf(englishBody, ev.PDFURL, schoolEn)
	return FeedbackDraft{
		Subject:   FeedbackSubject,
		Body:      ar + "\n\n\n" + en,
		Arabic:    ar,
		English:   en,
		ReportURL: ev.PDFURL,
	}
}

// MailtoURL builds a mailto link opening the draft in the user's mail client.
func (d FeedbackDraft) MailtoURL(to ...string) string {
	return "mailto:" + url.PathEscape(strings.Join(to, ",")) +
		"?subject=" + encodeComponent(d.Subject) +
		"&body=" + encodeComponent(d.Body)
}

// encodeComponent escapes s for a mailto query; spaces become %20 since mail clients show '+' verbatim.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// SendFeedback mails the feedback of an evaluation. Without explicit recipients
// it goes to the evaluated teacher's address on record.
func (svc *Service) SendFeedback(ctx context.Context, sess core.Session, personID, id string, to ...mail.Address) (FeedbackDraft, error) {
	ev, err := svc.Get(ctx, sess, personID, id)
	if err != nil {
		return FeedbackDraft{}, err
	}
	if len(to) == 0 {
		teacher, err := svc.persons.GetPerson(ctx, sess.AccountID, person.KindTeacher, personID)
		if err != nil && errors.Cause(err) != person.ErrNotFound {
			return FeedbackDraft{}, errors.Wrap(err, "loading teacher")
		}
		if teacher.Email != "" {
			to = append(to, mail.Address{Name: teacher.EnglishName, Address: teacher.Email})
		}
	}
	if len(to) == 0 {
		return FeedbackDraft{}, core.NewValidationError(errNoRecipients, core.FieldError{Field: "to", Error: errNoRecipients.Error()})
	}

	draft := ComposeFeedback(ev)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           to,
		Subject:      draft.Subject,
		BodyStr:      draft.Body,
		TemplateName: feedbackTemplate,
		TemplateData: draft,
	})
	return draft, nil
}
